package model

// CollectionStatus reports process-wide collection state. Counters
// reset only at process start.
type CollectionStatus struct {
	Running          bool    `json:"running"`
	TotalCollected   int64   `json:"totalCollected"`
	Errors           int64   `json:"errors"`
	LastCollection   string  `json:"lastCollection,omitempty"`
	ConnectedClients int     `json:"connectedClients"`
	TotalSpins       int     `json:"totalSpins"`
	TotalPatterns    int     `json:"totalPatterns"`
	UptimeSeconds    float64 `json:"uptimeSeconds"`
}

// ServiceStats is the collector's point-in-time stats document:
// configured capacities, store sizes, collection counters and the
// color distribution of the current ledger. Store-derived fields stay
// zero until the service starts.
type ServiceStats struct {
	Started           bool          `json:"started"`
	MaxSpins          int           `json:"maxSpins"`
	MaxPatterns       int           `json:"maxPatterns"`
	TotalSpins        int           `json:"totalSpins"`
	TotalPatterns     int           `json:"totalPatterns"`
	DedupeSize        int           `json:"dedupeSize"`
	ConnectedClients  int           `json:"connectedClients"`
	TotalCollected    int64         `json:"totalCollected"`
	CollectErrors     int64         `json:"collectErrors"`
	ColorDistribution map[Color]int `json:"colorDistribution,omitempty"`
}
