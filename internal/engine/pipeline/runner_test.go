package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swig/internal/adapters/fs"
	"go.trai.ch/swig/internal/core/domain"
	"go.trai.ch/swig/internal/core/ports/mocks"
	"go.trai.ch/swig/internal/engine/pipeline"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	root     string
	runner   *pipeline.Runner
	linter   *mocks.MockLinter
	minifier *mocks.MockMinifier
	compiler *mocks.MockStylesheetCompiler
	logger   *mocks.MockLogger
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	}

	ctrl := gomock.NewController(t)
	f := &fixture{
		root:     root,
		linter:   mocks.NewMockLinter(ctrl),
		minifier: mocks.NewMockMinifier(ctrl),
		compiler: mocks.NewMockStylesheetCompiler(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}
	f.runner = pipeline.NewRunner(fs.NewResolver(), fs.NewHasher(), f.linter, f.minifier, f.compiler, f.logger)
	return f
}

func (f *fixture) env() domain.BuildEnv {
	return domain.BuildEnv{Root: f.root, Meta: domain.PackageMeta{
		Name: "swagger-ui", Description: "Swagger UI", Version: "1.2.3",
		Homepage: "http://x", License: "Apache-2.0",
	}}
}

func (f *fixture) run(t *testing.T, p domain.Pipeline) (pipeline.Result, string) {
	t.Helper()
	var out bytes.Buffer
	res := f.runner.Run(context.Background(), f.env(), p, &out)
	return res, out.String()
}

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(b)
}

func TestRun_OrderThenConcat(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/templates.js": "T",
		"src/other.js":     "O",
		"src/scripts.js":   "S",
	})

	res, _ := f.run(t, domain.Pipeline{
		Name:    "dist",
		Sources: []string{"./src/*.js"},
		Steps: []domain.Step{
			{Kind: domain.StepOrder, Patterns: []string{"scripts.js", "templates.js"}},
			{Kind: domain.StepConcat, File: "swagger-ui.js"},
			{Kind: domain.StepCopy, Dest: "dist"},
		},
	})

	require.Empty(t, res.Errors)
	require.NoError(t, res.Fatal)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "S\nT\nO", f.read(t, "dist/swagger-ui.js"))
}

func TestRun_OrderIgnoresInputOrder(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/templates.js": "T",
		"src/other.js":     "O",
		"src/scripts.js":   "S",
	})
	sources := []string{"src/templates.js", "src/other.js", "src/scripts.js"}

	unordered, _ := f.run(t, domain.Pipeline{
		Name:    "unordered",
		Sources: sources,
		Steps:   []domain.Step{{Kind: domain.StepConcat, File: "swagger-ui.js"}},
	})
	require.Len(t, unordered.Records, 1)
	assert.Equal(t, "T\nO\nS", string(unordered.Records[0].Contents))

	ordered, _ := f.run(t, domain.Pipeline{
		Name:    "ordered",
		Sources: sources,
		Steps: []domain.Step{
			{Kind: domain.StepOrder, Patterns: []string{"scripts.js", "templates.js"}},
			{Kind: domain.StepConcat, File: "swagger-ui.js"},
		},
	})
	require.Len(t, ordered.Records, 1)
	assert.Equal(t, "S\nT\nO", string(ordered.Records[0].Contents))
}

func TestRun_WrapPreservesContent(t *testing.T) {
	f := newFixture(t, map[string]string{"a.js": "A", "b.js": "B", "c.js": "C"})
	tmpl := "(function(){\n{{.Contents}}\n})();"

	wrapped, _ := f.run(t, domain.Pipeline{
		Name:    "wrap-after-concat",
		Sources: []string{"a.js", "b.js", "c.js"},
		Steps: []domain.Step{
			{Kind: domain.StepConcat, File: "out.js"},
			{Kind: domain.StepWrap, Template: tmpl},
		},
	})
	require.Len(t, wrapped.Records, 1)
	assert.Equal(t, "(function(){\nA\nB\nC\n})();", string(wrapped.Records[0].Contents))
	assert.Equal(t, "out.js", wrapped.Records[0].Path)
}

func TestRun_BannerMinifyRename(t *testing.T) {
	f := newFixture(t, map[string]string{"src/main.js": "var a = 1;"})
	f.minifier.EXPECT().Minify("swagger-ui.js", gomock.Any()).
		DoAndReturn(func(_ string, src []byte) ([]byte, error) {
			return bytes.ReplaceAll(src, []byte(" "), nil), nil
		})

	res, out := f.run(t, domain.Pipeline{
		Name:    "dist",
		Sources: []string{"src/main.js"},
		Steps: []domain.Step{
			{Kind: domain.StepRename, Basename: "swagger-ui.js"},
			{Kind: domain.StepHeader},
			{Kind: domain.StepCopy, Dest: "dist"},
			{Kind: domain.StepMinify},
			{Kind: domain.StepRename, Extname: ".min.js"},
			{Kind: domain.StepRename, Extname: ".min.js"},
			{Kind: domain.StepCopy, Dest: "dist"},
		},
	})

	require.NoError(t, res.Fatal)
	assert.Empty(t, res.Errors)
	full := f.read(t, "dist/swagger-ui.js")
	assert.True(t, strings.HasPrefix(full, "/**\n * swagger-ui - Swagger UI\n * @version v1.2.3\n"))
	assert.True(t, strings.HasSuffix(full, " */\nvar a = 1;"))
	assert.FileExists(t, filepath.Join(f.root, "dist", "swagger-ui.min.js"))
	assert.NoFileExists(t, filepath.Join(f.root, "dist", "swagger-ui.min.min.js"))
	assert.Contains(t, out, "dist: 1 written, 0 unchanged")
}

func TestRun_Clean(t *testing.T) {
	f := newFixture(t, map[string]string{"dist/old.js": "x"})

	res, _ := f.run(t, domain.Pipeline{Name: "clean", Steps: []domain.Step{
		{Kind: domain.StepClean, Path: "./dist", Force: true},
	}})
	assert.Empty(t, res.Errors)
	assert.NoDirExists(t, filepath.Join(f.root, "dist"))

	res, _ = f.run(t, domain.Pipeline{Name: "again", Steps: []domain.Step{
		{Kind: domain.StepClean, Path: "./dist", Force: true},
	}})
	assert.Empty(t, res.Errors, "forced clean of an absent path is a no-op")

	res, _ = f.run(t, domain.Pipeline{Name: "strict", Steps: []domain.Step{
		{Kind: domain.StepClean, Path: "./dist"},
	}})
	require.Len(t, res.Errors, 1)
	assert.True(t, errors.Is(res.Errors[0], domain.ErrTransformFailed))

	res, _ = f.run(t, domain.Pipeline{Name: "outside", Steps: []domain.Step{
		{Kind: domain.StepClean, Path: "../elsewhere"},
	}})
	require.Len(t, res.Errors, 1)
}

func TestRun_StylesheetFailureDropsRecord(t *testing.T) {
	f := newFixture(t, map[string]string{
		"less/good.less": "@c: red; a { color: @c; }",
		"less/bad.less":  "a {",
		"less/logo.png":  "png",
	})
	f.compiler.EXPECT().Compile(filepath.Join(f.root, "less", "bad.less"), gomock.Any(), []string{filepath.Join(f.root, "vendor")}).
		Return(nil, domain.ErrStylesheetCompile)
	f.compiler.EXPECT().Compile(filepath.Join(f.root, "less", "good.less"), gomock.Any(), gomock.Any()).
		Return([]byte("a {\n  color: red;\n}\n"), nil)

	res, _ := f.run(t, domain.Pipeline{
		Name:    "less",
		Sources: []string{"less/*"},
		Steps: []domain.Step{
			{Kind: domain.StepStylesheet, IncludePaths: []string{"vendor"}},
			{Kind: domain.StepCopy, Dest: "css"},
		},
	})

	require.NoError(t, res.Fatal)
	require.Len(t, res.Errors, 1)
	assert.True(t, errors.Is(res.Errors[0], domain.ErrTransformFailed))
	assert.Equal(t, "a {\n  color: red;\n}\n", f.read(t, "css/good.css"))
	assert.FileExists(t, filepath.Join(f.root, "css", "logo.png"))
	assert.NoFileExists(t, filepath.Join(f.root, "css", "bad.css"))
}

func TestRun_MissingLiteralSource(t *testing.T) {
	f := newFixture(t, map[string]string{"lib/a.js": "a"})

	res, _ := f.run(t, domain.Pipeline{
		Name:    "lib",
		Sources: []string{"lib/a.js", "lib/missing.js"},
		Steps:   []domain.Step{{Kind: domain.StepCopy, Dest: "dist/lib"}},
	})

	require.Len(t, res.Errors, 1)
	assert.True(t, errors.Is(res.Errors[0], domain.ErrTransformFailed))
	assert.Equal(t, "a", f.read(t, "dist/lib/a.js"))
}

func TestRun_LintIsAdvisory(t *testing.T) {
	f := newFixture(t, map[string]string{"src/main.js": "debugger;"})
	finding := domain.LintFinding{File: "src/main.js", Line: 1, Column: 1, Rule: "debug", Message: "Forgotten 'debugger' statement?"}
	f.linter.EXPECT().Lint("src/main.js", []byte("debugger;")).Return([]domain.LintFinding{finding})
	f.logger.EXPECT().Warn(finding.String())

	res, out := f.run(t, domain.Pipeline{
		Name:    "lint",
		Sources: []string{"src/**/*.js"},
		Steps:   []domain.Step{{Kind: domain.StepLint}},
	})

	assert.Empty(t, res.Errors)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "debugger;", string(res.Records[0].Contents))
	assert.Contains(t, out, "src/main.js:1:1: Forgotten 'debugger' statement? (debug)")
}

func TestRun_UnchangedFilesAreNotRewritten(t *testing.T) {
	f := newFixture(t, map[string]string{"html/index.html": "<html></html>"})
	p := domain.Pipeline{
		Name:    "html",
		Sources: []string{"html/**/*"},
		Steps:   []domain.Step{{Kind: domain.StepCopy, Dest: "dist"}},
	}
	f.run(t, p)

	target := filepath.Join(f.root, "dist", "index.html")
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(target, old, old))

	_, out := f.run(t, p)
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, old.Equal(info.ModTime()), "unchanged output keeps its mtime")
	assert.Contains(t, out, "dist: 0 written, 1 unchanged")
}

func TestExecute_FatalIOIsolatesPipelines(t *testing.T) {
	f := newFixture(t, map[string]string{
		"blocker":    "a file where a directory is needed",
		"lang/en.js": "en",
	})
	f.logger.EXPECT().Error(gomock.Any()).Times(1)

	task := &domain.Task{
		Name: domain.NewInternedString("copy"),
		Pipelines: []domain.Pipeline{
			{Name: "broken", Sources: []string{"lang/*.js"}, Steps: []domain.Step{{Kind: domain.StepCopy, Dest: "blocker/out"}}},
			{Name: "lang", Sources: []string{"lang/*.js"}, Steps: []domain.Step{{Kind: domain.StepCopy, Dest: "dist/lang"}}},
		},
	}

	var out bytes.Buffer
	err := f.runner.Execute(context.Background(), f.env(), task, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFatalIO))
	assert.Equal(t, "en", f.read(t, "dist/lang/en.js"))
	assert.Contains(t, out.String(), "broken aborted")
}

func TestExecute_TransformErrorsDoNotFail(t *testing.T) {
	f := newFixture(t, nil)
	f.logger.EXPECT().Error(gomock.Any()).Times(1)

	task := &domain.Task{
		Name:      domain.NewInternedString("copy"),
		Pipelines: []domain.Pipeline{{Name: "lib", Sources: []string{"lib/missing.js"}}},
	}
	var out bytes.Buffer
	assert.NoError(t, f.runner.Execute(context.Background(), f.env(), task, &out))
}

func TestRun_UnwritableDestinationIsFatal(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits do not restrict root")
	}
	f := newFixture(t, map[string]string{"src/a.js": "a"})
	dist := filepath.Join(f.root, "dist")
	require.NoError(t, os.Mkdir(dist, 0o750))
	require.NoError(t, os.Chmod(dist, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dist, 0o750) })

	p := domain.Pipeline{
		Name:    "dist",
		Sources: []string{"src/*.js"},
		Steps:   []domain.Step{{Kind: domain.StepCopy, Dest: "dist"}},
	}
	res, out := f.run(t, p)
	require.Error(t, res.Fatal)
	assert.True(t, errors.Is(res.Fatal, domain.ErrFatalIO))
	assert.Empty(t, res.Records)
	assert.Contains(t, out, "dist aborted")

	f.logger.EXPECT().Error(gomock.Any()).Times(1)
	task := &domain.Task{Name: domain.NewInternedString("dist"), Pipelines: []domain.Pipeline{p}}
	err := f.runner.Execute(context.Background(), f.env(), task, io.Discard)
	assert.True(t, errors.Is(err, domain.ErrFatalIO))
}

func TestRun_FailedWriteDropsRecord(t *testing.T) {
	f := newFixture(t, map[string]string{"src/a.js": "a", "src/b.js": "b"})
	// A directory where dist/b.js should go makes that single write fail.
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, "dist", "b.js"), 0o750))

	res, out := f.run(t, domain.Pipeline{
		Name:    "dist",
		Sources: []string{"src/*.js"},
		Steps: []domain.Step{
			{Kind: domain.StepCopy, Dest: "dist"},
			{Kind: domain.StepRename, Extname: ".min.js"},
			{Kind: domain.StepCopy, Dest: "dist"},
		},
	})

	require.NoError(t, res.Fatal)
	require.Len(t, res.Errors, 1)
	assert.True(t, errors.Is(res.Errors[0], domain.ErrTransformFailed))
	assert.Contains(t, res.Errors[0].Error(), domain.ErrFileWriteFailed.Error())
	require.Len(t, res.Records, 1)
	assert.Equal(t, "a.min.js", res.Records[0].Path)
	assert.FileExists(t, filepath.Join(f.root, "dist", "a.min.js"))
	assert.NoFileExists(t, filepath.Join(f.root, "dist", "b.min.js"))
	assert.Contains(t, out, "dist: 1 written, 0 unchanged")
}

func TestRun_ResolverAndHasherPorts(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "lib", "a.js")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o750))
	require.NoError(t, os.WriteFile(src, []byte("a"), 0o600))

	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockInputResolver(ctrl)
	hasher := mocks.NewMockHasher(ctrl)
	runner := pipeline.NewRunner(resolver, hasher,
		mocks.NewMockLinter(ctrl), mocks.NewMockMinifier(ctrl), mocks.NewMockStylesheetCompiler(ctrl), mocks.NewMockLogger(ctrl))

	resolver.EXPECT().Resolve(root, []string{"lib/*.js", "lib/gone.js"}).
		Return([]domain.SourceFile{{Base: "lib", Path: "a.js", Abs: src}}, []string{"lib/gone.js"}, nil)
	hasher.EXPECT().HashFile(filepath.Join(root, "dist", "a.js")).Return(uint64(7), nil)
	hasher.EXPECT().HashBytes([]byte("a")).Return(uint64(7))

	var out bytes.Buffer
	res := runner.Run(context.Background(), domain.BuildEnv{Root: root}, domain.Pipeline{
		Name:    "lib",
		Sources: []string{"lib/*.js", "lib/gone.js"},
		Steps:   []domain.Step{{Kind: domain.StepCopy, Dest: "dist"}},
	}, &out)

	require.NoError(t, res.Fatal)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Error(), domain.ErrInputNotFound.Error())
	require.Len(t, res.Records, 1)
	assert.NoFileExists(t, filepath.Join(root, "dist", "a.js"), "a matching digest skips the write")
	assert.Contains(t, out.String(), "dist: 0 written, 1 unchanged")

	resolver.EXPECT().Resolve(root, []string{"["}).Return(nil, nil, domain.ErrInvalidPattern)
	res = runner.Run(context.Background(), domain.BuildEnv{Root: root}, domain.Pipeline{Name: "bad", Sources: []string{"["}}, &out)
	assert.True(t, errors.Is(res.Fatal, domain.ErrInvalidPattern))
}
