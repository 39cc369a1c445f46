// Package spr parses schema documents into schema.File values.
//
// Basic usage:
//
//	f, err := spr.Parse("shapes.spr", `
//		table Shape @5A1C0E42 {
//			name: Text
//			sides: U8 = 3
//		}`)
//
// Documents importing other documents are read with a Loader, which resolves
// "import name" to name.spr next to the importing file or in one of its
// include directories. Each file is parsed once.
//
// Syntax summary:
//   - Declarations: namespace a::b; import name; enum, struct, table, union
//   - Table magics: table Name @HEX { ... }
//   - Members: name: [optional|list|inplace|direct]* Type [Removed] [= value]
//   - Nested types: table [@HEX] {...}, union {...}, enum {...}, struct {...}
//   - Direct tables: name [@HEX] { ... }
//   - Comments: #, //, /* nested */; doc comments: ##, ///, /** */
//
// Parsing is fail-fast: the first syntax error is returned with its position.
// Semantic checks belong to the registry and layout packages.
package spr
