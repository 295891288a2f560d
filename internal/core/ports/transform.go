package ports

import "go.trai.ch/swig/internal/core/domain"

//go:generate mockgen -source=transform.go -destination=mocks/mock_transform.go -package=mocks

// Minifier produces size-reduced equivalents of script and stylesheet sources.
type Minifier interface {
	// Minify minifies src according to the extension of name.
	// Unsupported extensions are returned unchanged.
	Minify(name string, src []byte) ([]byte, error)
}

// Linter runs static checks over script sources.
type Linter interface {
	// Lint returns the findings for src. It never fails: unparsable input yields a syntax finding.
	Lint(name string, src []byte) []domain.LintFinding
}

// StylesheetCompiler compiles stylesheet sources into plain CSS.
type StylesheetCompiler interface {
	// Compile compiles src, resolving imports relative to the directory of filename
	// and then includePaths.
	Compile(filename string, src []byte, includePaths []string) ([]byte, error)
}

// PackageMetaReader reads package metadata for banners.
type PackageMetaReader interface {
	// Read returns the metadata stored at path. A missing file yields empty metadata.
	Read(path string) (domain.PackageMeta, error)
}
