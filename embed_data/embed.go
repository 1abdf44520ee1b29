package embed_data

import _ "embed"

//go:embed dictionary/words.txt
var Dictionary []byte

//go:embed tree-sitter/queries/cpp.scm
var CppQuery []byte

//go:embed tree-sitter/queries/c.scm
var CQuery []byte
