package registry

// Payloads exchanged with the peer. Field names follow the wire protocol.

type addAddressPayload struct {
	Blockchain string `json:"blockchain"`
	Address    string `json:"address"`
	Version    int    `json:"version"`
}

type removeAddressPayload struct {
	Blockchain string `json:"blockchain"`
	Address    string `json:"address"`
}

// authChallengeEvent asks this client to prove it holds an address's key
type authChallengeEvent struct {
	MessageID string `json:"messageId"`
	Payload   struct {
		Blockchain string `json:"blockchain"`
		Address    string `json:"address"`
		DataToSign string `json:"dataToSign"`
	} `json:"payload"`
}

// challengeResponse is emitted on response-<messageId>
type challengeResponse struct {
	Success   bool   `json:"success"`
	Signature string `json:"signature,omitempty"`
}

// addressEvent carries challenge outcome notifications
type addressEvent struct {
	Payload struct {
		Address string `json:"address"`
	} `json:"payload"`
}
