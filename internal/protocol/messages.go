package protocol

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}

// CatalogDigests pins the content the client must agree on before
// interpreting prices or build orders.
type CatalogDigests struct {
	ResourcePalette DigestRef `json:"resource_palette"`
	ResourcesDigest string    `json:"resources_digest"`
	BuildingsDigest string    `json:"buildings_digest"`
	ShipsDigest     string    `json:"ships_digest"`
	TechsDigest     string    `json:"techs_digest"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}
