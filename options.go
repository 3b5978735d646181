package plandex

// Option configures the Engine.
type Option interface {
	apply(*engineConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*engineConfig)

func (f optionFunc) apply(c *engineConfig) { f(c) }

type engineConfig struct {
	taxonomyFile string
	cacheSize    int
}

// WithTaxonomyFile replaces the built-in taxonomy with a YAML taxonomy file.
func WithTaxonomyFile(path string) Option {
	return optionFunc(func(c *engineConfig) {
		c.taxonomyFile = path
	})
}

// WithAnalyzerCacheSize sets how many analyzed queries are kept in memory.
// Zero disables the cache.
func WithAnalyzerCacheSize(n int) Option {
	return optionFunc(func(c *engineConfig) {
		c.cacheSize = n
	})
}
