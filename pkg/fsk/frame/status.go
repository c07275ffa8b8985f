package frame

// Status is a modem status report delivered in-band through the byte sink.
// Demodulators signal status changes as negative values on the same callback
// that carries decoded bytes, so anything below zero is a Status, never data.
type Status int

const (
	StatusCarrierDown        Status = -1
	StatusCarrierUp          Status = -2
	StatusTrainingInProgress Status = -3
	StatusTrainingSucceeded  Status = -4
	StatusTrainingFailed     Status = -5
	StatusFramingOK          Status = -6
	StatusEndOfData          Status = -7
)

func (s Status) String() string {
	switch s {
	case StatusCarrierDown:
		return "carrier down"
	case StatusCarrierUp:
		return "carrier up"
	case StatusTrainingInProgress:
		return "training in progress"
	case StatusTrainingSucceeded:
		return "training succeeded"
	case StatusTrainingFailed:
		return "training failed"
	case StatusFramingOK:
		return "framing OK"
	case StatusEndOfData:
		return "end of data"
	default:
		return "unknown status"
	}
}

// CarrierState tracks a reception's progress through carrier acquisition
// and loss.  Listening and CarrierPresent may alternate any number of times;
// StreamEnded is terminal for the reception instance.
type CarrierState int

const (
	Listening CarrierState = iota
	CarrierPresent
	CarrierLost
	StreamEnded
)

func (c CarrierState) String() string {
	switch c {
	case Listening:
		return "listening"
	case CarrierPresent:
		return "carrier present"
	case CarrierLost:
		return "carrier lost"
	case StreamEnded:
		return "stream ended"
	default:
		return "invalid"
	}
}
