package blackjack

// PlayerAction is an intent a player can submit
type PlayerAction string

const (
	ActionNone       PlayerAction = "NONE"
	ActionBet        PlayerAction = "BET"
	ActionHit        PlayerAction = "HIT"
	ActionStand      PlayerAction = "STAND"
	ActionDoubleDown PlayerAction = "DOUBLE_DOWN"
	ActionSplit      PlayerAction = "SPLIT"
)

// String returns the string representation of the action
func (a PlayerAction) String() string {
	return string(a)
}

// DealerAction is a step in the dealer's fixed policy
type DealerAction string

const (
	DealerNone         DealerAction = "NONE"
	DealerPeek         DealerAction = "PEEK"
	DealerShowFaceDown DealerAction = "SHOW_FACE_DOWN"
	DealerDraw         DealerAction = "DRAW"
	DealerStand        DealerAction = "STAND"
)

// String returns the string representation of the action
func (a DealerAction) String() string {
	return string(a)
}
