package matcher

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hetulpatel/crossarb/internal/logging"
	"github.com/hetulpatel/crossarb/internal/matches"
)

type LogMode int

const (
	LogModeQuiet LogMode = iota
	LogModeSummary
	LogModeVerbose
)

func (m LogMode) String() string {
	switch m {
	case LogModeSummary:
		return "summary"
	case LogModeVerbose:
		return "verbose"
	default:
		return "quiet"
	}
}

const defaultMatchLogPath = "matches.log"

func ParseLogMode(input string) LogMode {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "summary":
		return LogModeSummary
	case "verbose":
		return LogModeVerbose
	default:
		return LogModeQuiet
	}
}

// Logger records matched pairs for offline review of the matcher's decisions.
type Logger struct {
	mode LogMode
	path string
	mu   sync.Mutex
}

func NewLogger(mode LogMode, path string) *Logger {
	if path == "" {
		path = defaultMatchLogPath
	}
	return &Logger{mode: mode, path: path}
}

func (l *Logger) Mode() LogMode {
	if l == nil {
		return LogModeQuiet
	}
	return l.mode
}

func (l *Logger) Enabled() bool {
	return l != nil && l.mode != LogModeQuiet
}

// LogMatches writes every pair of one scan.
func (l *Logger) LogMatches(scanID string, pairs []matches.MatchedPair, threshold float64) {
	if !l.Enabled() {
		return
	}
	for i := range pairs {
		l.LogMatch(scanID, &pairs[i], threshold)
	}
}

func (l *Logger) LogMatch(scanID string, pair *matches.MatchedPair, threshold float64) {
	if !l.Enabled() || pair == nil {
		return
	}
	switch l.mode {
	case LogModeSummary:
		logging.Infof("[matcher] matched %s (%s) -> %s (%s) sim=%.4f threshold=%.4f",
			pair.VenueA, pair.MarketA.Question, pair.VenueB, pair.MarketB.Question, pair.Similarity, threshold)
	case LogModeVerbose:
		srcJSON, _ := json.MarshalIndent(pair.MarketA, "", "  ")
		dstJSON, _ := json.MarshalIndent(pair.MarketB, "", "  ")
		logging.Infof("[matcher] match sim=%.4f threshold=%.4f\n%s=%s\n%s=%s",
			pair.Similarity, threshold, pair.VenueA, string(srcJSON), pair.VenueB, string(dstJSON))
	}
	l.appendToFile(scanID, pair, threshold)
}

func (l *Logger) appendToFile(scanID string, pair *matches.MatchedPair, threshold float64) {
	entry := map[string]any{
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		"scan_id":    scanID,
		"similarity": pair.Similarity,
		"threshold":  threshold,
		"venue_a":    pair.VenueA,
		"market_a":   pair.MarketA,
		"venue_b":    pair.VenueB,
		"market_b":   pair.MarketB,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		logging.Errorf("[matcher] log file marshal error: %v", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logging.Errorf("[matcher] log file open error: %v", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		logging.Errorf("[matcher] log file write error: %v", err)
	}
}
