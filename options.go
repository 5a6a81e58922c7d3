package texforge

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	embedder  Embedder
	generator Generator

	cacheAddrs     []string
	cachePassword  string
	cacheKeyPrefix string

	templates    map[string]TemplateSpec
	placeholders map[string]string
}

// TemplateSpec is a document template supplied by the caller.
type TemplateSpec struct {
	Preamble  string
	Postamble string
}

// WithEmbedder sets the query embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator sets the text generation provider.
// Required for Generate; Search works without it.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithRedisCache caches query embeddings in Redis.
func WithRedisCache(addr, password, keyPrefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheKeyPrefix = keyPrefix
	})
}

// WithTemplate registers a document template under name, overriding a
// built-in of the same name.
func WithTemplate(name string, spec TemplateSpec) Option {
	return optionFunc(func(c *clientConfig) {
		if c.templates == nil {
			c.templates = make(map[string]TemplateSpec)
		}
		c.templates[name] = spec
	})
}

// WithPlaceholders sets the values substituted into <PLACEHOLDER> markers
// after template enforcement.
func WithPlaceholders(values map[string]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.placeholders = values
	})
}
