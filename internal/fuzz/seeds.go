package fuzztests

import (
	"io/fs"
	"os"
	"path"
	"testing"
)

const maxSeedBytes = 64 << 10

var recoverySeeds = []string{
	"",
	"library;\n",
	"contract;\nfn f() { let x: u64 = 1\nlet y: u64 = 2; }\n", // пропущенная ;
	"library;\nfn f() { { { { } } } }\n",
	"library;\nfn f() { match x { } }\n",
	"library;\nfn f<T>(x: T) where T: { x }\n",
	"library;\nstruct S { a: u64, \n",
	"library;\n#[storage(read, write\nfn f() {}\n",
	"script;\nfn main() -> u64 { a < b > (c) }\n",
	"library;\nuse a::{b, c::{d, *}, e as f};\n",
	"library;\nconst X: b256 = 0x1234;\n",
	"library;\nfn f() -> str[3] { \"ab\\\"c\" }\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range recoverySeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f, os.DirFS(path.Join("..", "..", "testdata")))
}

func addTestdataSeeds(f *testing.F, root fs.FS) {
	_ = fs.WalkDir(root, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ".sw" {
			return nil
		}
		src, err := fs.ReadFile(root, p)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	return append([]byte(nil), src[:min(len(src), maxSeedBytes)]...)
}
