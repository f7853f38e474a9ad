package codec

// Request and response bodies for the HTTP API.

type AttackRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type TurnView struct {
	Row     int               `json:"row"`
	Col     int               `json:"col"`
	Outcome string            `json:"outcome"`
	Proof   *ShotProofPayload `json:"proof,omitempty"`
}

type BoardsView struct {
	Enemy []string `json:"enemy"` // ships hidden
	Own   []string `json:"own"`
}

type GameView struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"`
	Rounds     int         `json:"rounds"`
	Boards     BoardsView  `json:"boards"`
	Commitment *Commitment `json:"commitment,omitempty"`
}

type RoundView struct {
	Human  TurnView   `json:"human"`
	CPU    *TurnView  `json:"cpu,omitempty"`
	Status string     `json:"status"`
	Boards BoardsView `json:"boards"`
}

type VerifyRequest struct {
	RootHex string           `json:"rootHex"`
	VKB64   string           `json:"vkB64"`
	Size    int              `json:"size"`
	Row     int              `json:"row"`
	Col     int              `json:"col"`
	Payload ShotProofPayload `json:"payload"`
}

type VerifyResponse struct {
	Valid bool  `json:"valid"`
	Hit   uint8 `json:"hit"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
