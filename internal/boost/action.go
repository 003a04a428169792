package boost

// ActionType classifies the kind of boost event carried by a settled invoice
// or sent payment. Unknown string values always coerce to Invalid, never to
// Unknown -- Unknown only ever appears on a BoostRecord that was never run
// through MapAction at all.
type ActionType uint8

const (
	ActionUnknown ActionType = 0
	ActionStream  ActionType = 1
	ActionBoost   ActionType = 2
	ActionInvalid ActionType = 3
	ActionAuto    ActionType = 4
	ActionInvoice ActionType = 5
)

// MapAction maps the lowercased `action` string from a TLV payload to its
// ActionType. An empty string -- a payload with no `action` key at all --
// defaults to Stream; any other unrecognized value coerces to Invalid.
func MapAction(s string) ActionType {
	switch s {
	case "stream", "":
		return ActionStream
	case "boost":
		return ActionBoost
	case "auto":
		return ActionAuto
	case "invoice":
		return ActionInvoice
	default:
		return ActionInvalid
	}
}

// IsBoostList reports whether a is classified in the "boost list" for
// listing purposes (Boost, Auto, Invoice); everything else is "stream list".
func (a ActionType) IsBoostList() bool {
	switch a {
	case ActionBoost, ActionAuto, ActionInvoice:
		return true
	default:
		return false
	}
}

// Name returns the lowercase action name trigger on_* predicates match
// against.
func (a ActionType) Name() string {
	switch a {
	case ActionStream:
		return "stream"
	case ActionBoost:
		return "boost"
	case ActionAuto:
		return "auto"
	case ActionInvoice:
		return "invoice"
	default:
		return "unknown"
	}
}
