package config

import "time"

const (
	// Chat protocol
	MaxMessageLength = 2500

	// Matching
	MaxPartnerResults = 20
	MaxMatchScore     = 100

	ScoreReciprocalExchange = 50
	ScoreSameProficiency    = 20
	ScoreBothAvailable      = 15
	ScoreHasBio             = 10
	ScoreHasSentMessages    = 5

	// WebSocket transport
	WriteWait  = 10 * time.Second
	PongWait   = 60 * time.Second
	PingPeriod = (PongWait * 9) / 10
	// A valid message fully \u-escaped is 2500 × 12 bytes plus the envelope.
	// Larger frames are read to the end and dropped.
	MaxFrameSize    = 64 * 1024
	SendBufferSize  = 256
	SessionCloseTTL = 5 * time.Second
)
