package lookup

// Kind discriminates the terminal failure domains of one query. None of
// them is retried; each maps to one fixed user-facing message.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConnectivity
	KindNotFound
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConnectivity:
		return "connectivity"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// User-facing messages, verbatim from the widget.
const (
	MsgEmptyCity      = "Por favor, ingresa una ciudad"
	MsgMissingCountry = "Por favor, selecciona un país"
	MsgUnknownCountry = "País no válido. Selecciona uno de la lista."
	MsgNoConnection   = "Sin conexión a Internet. Verifica tu WiFi o datos móviles."
	MsgConnection     = "Error de conexión. Por favor, intenta nuevamente."
	MsgNotFound       = "Ciudad no encontrada. Verifica el nombre e intenta nuevamente."
	MsgUpstream       = "Error al obtener datos del clima. Intenta más tarde."
	MsgInvalidCoords  = "Coordenadas no válidas. Intenta nuevamente."
)

// Error is a terminal query failure: the kind, the fixed message shown to
// the user, and the underlying cause when one exists.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Kind.String() + ": " + e.cause.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}
