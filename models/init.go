package models

// Init reports which modules the bridge brought up.
type Init struct {
	Serializable
	Capabilities []string
}

func NewInitFromArgs(capabilities []string) *Init {
	baseSerializable, constructErr := NewSerializable()
	if constructErr != nil {
		return &Init{Capabilities: capabilities}
	}
	return &Init{*baseSerializable, capabilities}
}

func (i *Init) GenMessage(method string) *Message {
	return &Message{Method: method, Args: i}
}
