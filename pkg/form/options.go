package form

import (
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-formtree/pkg/render/template"
)

// Option configures a Field or Form at construction time. Form-only options
// are ignored by NewField.
type Option func(*config)

type config struct {
	renderer template.TemplateRenderer
	widgets  *WidgetRegistry
	logger   *slog.Logger
	tracer   trace.Tracer
	i18n     *localizer

	action  string
	method  string
	buttons []Button
	hidden  []HiddenField
}

func newConfig(options []Option) config {
	cfg := config{
		action: DefaultAction,
		method: DefaultMethod,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.renderer == nil {
		cfg.renderer = DefaultRenderer()
	}
	if cfg.widgets == nil {
		cfg.widgets = DefaultWidgets()
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}

// WithRenderer sets the template renderer shared by the whole field tree.
func WithRenderer(renderer template.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.renderer = renderer
		}
	}
}

// WithWidgets sets the registry used to resolve default widgets.
func WithWidgets(registry *WidgetRegistry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.widgets = registry
		}
	}
}

// WithLogger sets the logger used to report validation failures at debug
// level.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithTranslator renders field text through translator for locale.
func WithTranslator(translator Translator, locale string) Option {
	return func(cfg *config) {
		cfg.localizer().translator = translator
		cfg.i18n.locale = strings.TrimSpace(locale)
	}
}

// WithMissingTranslation sets the handler used when a message has no
// translation. The default renders the message untranslated.
func WithMissingTranslation(handler MissingTranslationHandler) Option {
	return func(cfg *config) {
		cfg.localizer().onMissing = handler
	}
}

func (cfg *config) localizer() *localizer {
	if cfg.i18n == nil {
		cfg.i18n = &localizer{}
	}
	return cfg.i18n
}

// WithTracer records a span around every validation.
func WithTracer(tracer trace.Tracer) Option {
	return func(cfg *config) {
		cfg.tracer = tracer
	}
}

// WithAction sets the form action. Empty values keep the default ".".
func WithAction(action string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(action); trimmed != "" {
			cfg.action = trimmed
		}
	}
}

// WithMethod sets the form method. Empty values keep the default "POST".
func WithMethod(method string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(method); trimmed != "" {
			cfg.method = strings.ToUpper(trimmed)
		}
	}
}

// WithButtons appends buttons to the form's button bar.
func WithButtons(buttons ...Button) Option {
	return func(cfg *config) {
		cfg.buttons = append(cfg.buttons, buttons...)
	}
}

// WithButtonNames appends one default Button per name.
func WithButtonNames(names ...string) Option {
	return func(cfg *config) {
		for _, name := range names {
			cfg.buttons = append(cfg.buttons, NewButton(name))
		}
	}
}

// WithHidden adds hidden inputs rendered inside the form tag.
func WithHidden(fields ...HiddenField) Option {
	return func(cfg *config) {
		cfg.hidden = append(cfg.hidden, fields...)
	}
}
