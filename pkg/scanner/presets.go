package scanner

// Factory presets for common source-tree shapes. Each returns Options
// pre-populated with include/exclude pattern sets; callers adjust the
// other fields as needed.

// WebAssets covers front-end trees: markup, styles, scripts and
// component files, minus dependency and build output directories.
func WebAssets() *Options {
	o := DefaultOptions()
	o.IncludePatterns = []string{
		"**/*.html", "**/*.css", "**/*.scss", "**/*.less",
		"**/*.js", "**/*.jsx", "**/*.ts", "**/*.tsx",
		"**/*.vue", "**/*.svelte",
	}
	o.ExcludePatterns = []string{
		"**/node_modules/**", "**/dist/**", "**/build/**",
		"**/coverage/**", "**/*.min.js",
	}
	return o
}

// LanguageSources covers a single-language source tree. Known language
// names carry their conventional dependency-directory exclusions; an
// unknown name is treated as a bare file extension.
func LanguageSources(lang string) *Options {
	o := DefaultOptions()
	switch lang {
	case "go":
		o.IncludePatterns = []string{"**/*.go"}
		o.ExcludePatterns = []string{"**/vendor/**", "**/testdata/**"}
	case "python":
		o.IncludePatterns = []string{"**/*.py"}
		o.ExcludePatterns = []string{"**/venv/**", "**/.venv/**", "**/__pycache__/**", "**/*.egg-info/**"}
	case "javascript", "typescript":
		o.IncludePatterns = []string{"**/*.js", "**/*.jsx", "**/*.ts", "**/*.tsx"}
		o.ExcludePatterns = []string{"**/node_modules/**", "**/dist/**", "**/*.d.ts"}
	case "rust":
		o.IncludePatterns = []string{"**/*.rs"}
		o.ExcludePatterns = []string{"**/target/**"}
	case "java":
		o.IncludePatterns = []string{"**/*.java"}
		o.ExcludePatterns = []string{"**/target/**", "**/build/**", "**/.gradle/**"}
	default:
		o.IncludePatterns = []string{"**/*." + lang}
	}
	return o
}

// BackendServices covers polyglot service trees: source, schemas,
// wire definitions and deployment manifests.
func BackendServices() *Options {
	o := DefaultOptions()
	o.IncludePatterns = []string{
		"**/*.go", "**/*.py", "**/*.rb", "**/*.java", "**/*.rs",
		"**/*.sql", "**/*.proto", "**/*.graphql",
		"**/*.yaml", "**/*.yml", "**/*.toml", "**/*.json",
	}
	o.ExcludePatterns = []string{
		"**/vendor/**", "**/node_modules/**", "**/target/**",
		"**/testdata/**", "**/package-lock.json",
	}
	return o
}
