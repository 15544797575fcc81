package docgen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Parumezan/toxidoc/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for doc skeleton generation:
// - Skeletons carry @brief, @class for classes, @arg per named argument and @return for non-void
// - Only entities with neither brief nor raw comment are planned, once per position
// - Insertion keeps indentation and splits lines when code precedes the entity
// - Dry run prints the plan and leaves files untouched
// - Apply rewrites files in place

func TestSkeleton(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		e    entity.Entity
		want []string
	}{
		{
			name: "class",
			e:    entity.Entity{Name: "Shape", Kind: entity.KindClass},
			want: []string{"/**", " * @brief", " *", " * @class Shape", " */"},
		},
		{
			name: "function",
			e: entity.Entity{
				Name:       "dev_read",
				Kind:       entity.KindFunction,
				Arguments:  []string{"dev", "", "len"},
				ReturnType: "int",
			},
			want: []string{"/**", " * @brief", " *", " * @arg dev", " * @arg len", " *", " * @return int", " */"},
		},
		{
			name: "void without arguments",
			e:    entity.Entity{Name: "reset", Kind: entity.KindMethod, ReturnType: "void"},
			want: []string{"/**", " * @brief", " */"},
		},
		{
			name: "only unnamed arguments",
			e:    entity.Entity{Name: "f", Kind: entity.KindFunction, Arguments: []string{""}},
			want: []string{"/**", " * @brief", " */"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Skeleton(tt.e))
		})
	}
}

func TestPlan(t *testing.T) {
	t.Parallel()

	entities := []entity.Entity{
		{FilePath: "b.h", Name: "late", Kind: entity.KindFunction, StartLine: 9, StartColumn: 1},
		{FilePath: "b.h", Name: "early", Kind: entity.KindFunction, StartLine: 2, StartColumn: 1},
		{FilePath: "a.h", Name: "documented", Kind: entity.KindFunction, BriefComment: "Done.", StartLine: 1, StartColumn: 1},
		{FilePath: "a.h", Name: "commented", Kind: entity.KindFunction, RawComment: "/** @brief */", StartLine: 2, StartColumn: 1},
		{FilePath: "a.h", Name: "gone", Kind: entity.KindFunction, State: entity.StateRemoved, StartLine: 3, StartColumn: 1},
		{FilePath: "a.h", Name: "Alias", Kind: entity.KindStruct, StartLine: 5, StartColumn: 1},
		{FilePath: "a.h", Name: "Alias", Kind: entity.KindClass, StartLine: 5, StartColumn: 1},
	}

	plans := Plan(entities)
	require.Len(t, plans, 2)
	assert.Equal(t, "a.h", plans[0].Path)
	require.Len(t, plans[0].Insertions, 1)
	assert.Equal(t, entity.KindStruct, plans[0].Insertions[0].Entity.Kind)

	assert.Equal(t, "b.h", plans[1].Path)
	require.Len(t, plans[1].Insertions, 2)
	assert.Equal(t, "early", plans[1].Insertions[0].Entity.Name)
	assert.Equal(t, "late", plans[1].Insertions[1].Entity.Name)

	assert.Empty(t, Plan(nil))
}

func TestInsert(t *testing.T) {
	t.Parallel()

	src := strings.Join([]string{
		"#pragma once",
		"",
		"int open(const char *path);",
		"",
		"class Shape {",
		"  public:",
		"    void reset();",
		"};",
		"int a; int b;",
		"",
	}, "\n")

	insertions := []Insertion{
		{Entity: entity.Entity{StartLine: 3, StartColumn: 1}, Lines: []string{"/**", " * @brief", " */"}},
		{Entity: entity.Entity{StartLine: 7, StartColumn: 5}, Lines: []string{"/** @brief */"}},
		{Entity: entity.Entity{StartLine: 9, StartColumn: 8}, Lines: []string{"/** b */"}},
	}

	got, err := Insert([]byte(src), insertions)
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"#pragma once",
		"",
		"/**",
		" * @brief",
		" */",
		"int open(const char *path);",
		"",
		"class Shape {",
		"  public:",
		"    /** @brief */",
		"    void reset();",
		"};",
		"int a;",
		"       /** b */",
		"       int b;",
		"",
	}, "\n"), string(got))
}

func TestInsert_CRLFAndTabs(t *testing.T) {
	t.Parallel()

	src := "struct S {\r\n\tint x;\r\n};\r\n"
	got, err := Insert([]byte(src), []Insertion{
		{Entity: entity.Entity{StartLine: 2, StartColumn: 2}, Lines: []string{"/** @brief */"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "struct S {\r\n\t/** @brief */\r\n\tint x;\r\n};\r\n", string(got))
}

func TestInsert_OutOfRange(t *testing.T) {
	t.Parallel()

	_, err := Insert([]byte("int x;\n"), []Insertion{
		{Entity: entity.Entity{FilePath: "x.h", StartLine: 5, StartColumn: 1}},
	})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = Insert([]byte("int x;\n"), []Insertion{
		{Entity: entity.Entity{FilePath: "x.h", StartLine: 1, StartColumn: 40}},
	})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestGenerator_Apply(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "api.h")
	original := "int dev_open(const char *name);\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0640))

	entities := []entity.Entity{{
		FilePath:    path,
		Name:        "dev_open",
		Kind:        entity.KindFunction,
		StartLine:   1,
		StartColumn: 1,
		Arguments:   []string{"name"},
		ReturnType:  "int",
	}}

	var out bytes.Buffer
	dry := &Generator{DryRun: true, Out: &out}
	result, err := dry.Apply(context.Background(), Plan(entities))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, 1, result.Insertions)
	assert.Contains(t, out.String(), "--- "+path+":1:1 Function dev_open\n")
	assert.Contains(t, out.String(), "+  * @arg name\n")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data), "dry run leaves the file untouched")

	gen := &Generator{}
	_, err = gen.Apply(context.Background(), Plan(entities))
	require.NoError(t, err)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/**\n * @brief\n *\n * @arg name\n *\n * @return int\n */\n"+original, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}

func TestGenerator_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &Generator{DryRun: true}
	_, err := gen.Apply(ctx, []FilePlan{{Path: "x.h"}})
	assert.ErrorIs(t, err, context.Canceled)
}
