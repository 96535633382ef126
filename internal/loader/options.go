package loader

// DefaultExtensions are the file extensions a directory walk picks up.
var DefaultExtensions = []string{".yaml", ".yml", ".json"}

// NewService creates a new loader service with optional configuration
func NewService(options ...Option) *Service {
	s := &Service{
		strict:     false,
		excludes:   make(map[string]struct{}),
		extensions: DefaultExtensions,
		debug:      &noOpDebugger{},
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// WithStrict rejects documents that do not declare OpenAPI 3.0/3.1 or that
// contain refs outside the document.
func WithStrict(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

// WithExcludes sets directory exclusion patterns
func WithExcludes(excludes map[string]struct{}) Option {
	return func(s *Service) {
		s.excludes = excludes
	}
}

// WithExtensions sets the file extensions to load
func WithExtensions(exts []string) Option {
	return func(s *Service) {
		s.extensions = exts
	}
}

// WithDebugger sets the debugger for logging
func WithDebugger(debugger Debugger) Option {
	return func(s *Service) {
		if debugger != nil {
			s.debug = debugger
		}
	}
}
