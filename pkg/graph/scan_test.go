package graph_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-emit/pkg/graph"
)

func specifiers(imports []graph.Import) []string {
	if len(imports) == 0 {
		return nil
	}
	out := make([]string, 0, len(imports))
	for _, imp := range imports {
		out = append(out, imp.Specifier)
	}
	return out
}

func TestScanImports_StatementForms(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "default import",
			source: `import greet from "./greet.ts";`,
			want:   []string{"./greet.ts"},
		},
		{
			name:   "named imports",
			source: `import { a, b as c } from "./util.ts";`,
			want:   []string{"./util.ts"},
		},
		{
			name:   "namespace import",
			source: `import * as path from "https://deno.land/std/path/mod.ts";`,
			want:   []string{"https://deno.land/std/path/mod.ts"},
		},
		{
			name:   "side effect import",
			source: `import "./polyfill.ts";`,
			want:   []string{"./polyfill.ts"},
		},
		{
			name:   "export from",
			source: `export { greet } from "./greet.ts";`,
			want:   []string{"./greet.ts"},
		},
		{
			name:   "export star from",
			source: `export * from "./all.ts";`,
			want:   []string{"./all.ts"},
		},
		{
			name:   "plain export declaration",
			source: `export const a = 1;`,
			want:   nil,
		},
		{
			name:   "commented out",
			source: "// import \"./a.ts\";\n/* import \"./b.ts\"; */",
			want:   nil,
		},
		{
			name:   "inside string literal",
			source: `const s = 'import "./a.ts";';`,
			want:   nil,
		},
		{
			name:   "import meta",
			source: `const url = import.meta.url;`,
			want:   nil,
		},
		{
			name:   "dynamic with literal",
			source: `const mod = await import("./lazy.ts");`,
			want:   []string{"./lazy.ts"},
		},
		{
			name:   "dynamic with expression",
			source: `const mod = await import(name);`,
			want:   nil,
		},
		{
			name:   "multiple statements",
			source: "import \"./a.ts\";\nimport { b } from \"./b.ts\";\nexport * from \"./c.ts\";",
			want:   []string{"./a.ts", "./b.ts", "./c.ts"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := specifiers(graph.ScanImports(tc.source))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("imports mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanImports_TypeOnlyIsFlagged(t *testing.T) {
	source := "import type { Point } from \"./types.ts\";\n" +
		"export type { Shape } from \"./shapes.ts\";\n" +
		"import { real } from \"./real.ts\";"

	imports := graph.ScanImports(source)
	if len(imports) != 3 {
		t.Fatalf("expected 3 imports, got %d: %v", len(imports), imports)
	}
	if !imports[0].TypeOnly || !imports[1].TypeOnly {
		t.Fatalf("type-only statements not flagged: %+v", imports[:2])
	}
	if imports[2].TypeOnly {
		t.Fatalf("value import flagged as type-only: %+v", imports[2])
	}
}

func TestScanImports_StaticOffsetsCoverTheStatement(t *testing.T) {
	source := `const a = 1; import { b } from "./b.ts"; const c = 2;`
	imports := graph.ScanImports(source)
	if len(imports) != 1 {
		t.Fatalf("expected 1 import, got %d", len(imports))
	}
	stmt := source[imports[0].Start:imports[0].End]
	if stmt != `import { b } from "./b.ts";` {
		t.Fatalf("statement span = %q", stmt)
	}
}

func TestScanImports_DynamicOffsetsCoverTheLiteral(t *testing.T) {
	source := `const mod = await import("./lazy.ts");`
	imports := graph.ScanImports(source)
	if len(imports) != 1 || !imports[0].Dynamic {
		t.Fatalf("expected 1 dynamic import, got %v", imports)
	}
	literal := source[imports[0].Start:imports[0].End]
	if literal != `"./lazy.ts"` {
		t.Fatalf("literal span = %q", literal)
	}
}

func TestScanImports_LineNumbers(t *testing.T) {
	source := "const a = 1;\n\nimport \"./b.ts\";\nimport \"./c.ts\";"
	imports := graph.ScanImports(source)
	if len(imports) != 2 {
		t.Fatalf("expected 2 imports, got %d", len(imports))
	}
	if imports[0].Line != 3 || imports[1].Line != 4 {
		t.Fatalf("line numbers = %d, %d; want 3, 4", imports[0].Line, imports[1].Line)
	}
}
