package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHuntBreakthrough  BookmarkType = "hunt_breakthrough"
	BookmarkVeganCrash        BookmarkType = "vegan_crash"
	BookmarkCarnivoreRecovery BookmarkType = "carnivore_recovery"
	BookmarkCarnivoreExtinct  BookmarkType = "carnivore_extinct"
	BookmarkStableEcosystem   BookmarkType = "stable_ecosystem"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Generation  int          `csv:"generation"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"generation", b.Generation,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the population history.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentCarnMin    int // minimum carnivore count since the last recovery
	recentVeganPeak  int // peak vegan count since the last crash
	stableWindows    int // consecutive windows with stable populations
	carnivoresExtant bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Reset clears all history, e.g. when a new generation is seeded.
func (bd *BookmarkDetector) Reset() {
	*bd = *NewBookmarkDetector(bd.historySize)
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	add := func(b *Bookmark) {
		if b != nil {
			b.Tick = stats.WindowEndTick
			b.Generation = stats.Generation
			bookmarks = append(bookmarks, *b)
		}
	}

	if bd.historyFull || bd.historyIdx > 0 {
		add(bd.checkHuntBreakthrough(stats))
		add(bd.checkVeganCrash(stats))
		add(bd.checkCarnivoreRecovery(stats))
		add(bd.checkCarnivoreExtinct(stats))
		add(bd.checkStableEcosystem(stats))
	}

	bd.addToHistory(stats)

	if stats.Carnivores > 0 {
		bd.carnivoresExtant = true
	}
	if stats.Carnivores < bd.recentCarnMin || bd.recentCarnMin == 0 {
		bd.recentCarnMin = stats.Carnivores
	}
	if stats.Vegans > bd.recentVeganPeak {
		bd.recentVeganPeak = stats.Vegans
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// huntRate is predations per carnivore in a window.
func huntRate(s WindowStats) float64 {
	if s.Carnivores == 0 {
		return 0
	}
	return float64(s.Predations) / float64(s.Carnivores)
}

func (bd *BookmarkDetector) checkHuntBreakthrough(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += huntRate(h)
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	current := huntRate(stats)
	if current > avg*2.0 && stats.Predations >= 3 {
		return &Bookmark{
			Type:        BookmarkHuntBreakthrough,
			Description: fmt.Sprintf("Hunt rate %.2f is %.1fx average (%.2f)", current, current/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkVeganCrash(stats WindowStats) *Bookmark {
	if bd.recentVeganPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Vegans)/float64(bd.recentVeganPeak)
	if drop > 0.30 && stats.Vegans < bd.recentVeganPeak-10 {
		oldPeak := bd.recentVeganPeak
		bd.recentVeganPeak = stats.Vegans
		return &Bookmark{
			Type:        BookmarkVeganCrash,
			Description: fmt.Sprintf("Vegans crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Vegans),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCarnivoreRecovery(stats WindowStats) *Bookmark {
	if bd.recentCarnMin == 0 || bd.recentCarnMin > 2 {
		return nil
	}

	if stats.Carnivores >= bd.recentCarnMin*3 && stats.Carnivores >= 6 {
		oldMin := bd.recentCarnMin
		bd.recentCarnMin = stats.Carnivores
		return &Bookmark{
			Type:        BookmarkCarnivoreRecovery,
			Description: fmt.Sprintf("Carnivores recovered from %d to %d", oldMin, stats.Carnivores),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCarnivoreExtinct(stats WindowStats) *Bookmark {
	if !bd.carnivoresExtant || stats.Carnivores > 0 {
		return nil
	}
	bd.carnivoresExtant = false
	return &Bookmark{
		Type:        BookmarkCarnivoreExtinct,
		Description: "Last carnivore died",
	}
}

func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	if stats.Vegans < 10 || stats.Carnivores < 2 {
		bd.stableWindows = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	// Squared coefficient of variation over the last 4 windows
	cv2 := func(count func(WindowStats) int) float64 {
		var sum float64
		recent := history[len(history)-4:]
		for _, h := range recent {
			sum += float64(count(h))
		}
		mean := sum / 4
		if mean == 0 {
			return 0
		}
		var variance float64
		for _, h := range recent {
			d := float64(count(h)) - mean
			variance += d * d
		}
		return variance / 4 / (mean * mean)
	}

	vegCV := cv2(func(s WindowStats) int { return s.Vegans })
	carnCV := cv2(func(s WindowStats) int { return s.Carnivores })
	if vegCV < 0.04 && carnCV < 0.04 {
		bd.stableWindows++
	} else {
		bd.stableWindows = 0
	}

	if bd.stableWindows == 5 {
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Description: fmt.Sprintf("Stable ecosystem with %d vegans, %d carnivores over 5+ windows", stats.Vegans, stats.Carnivores),
		}
	}
	return nil
}
