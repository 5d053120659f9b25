package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/dremok/oubli-forever-sub007/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPopulationBoom      BookmarkType = "population_boom"
	BookmarkPopulationCrash     BookmarkType = "population_crash"
	BookmarkStablePlateau       BookmarkType = "stable_plateau"
	BookmarkPortalNetworkOnline BookmarkType = "portal_network_online"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Generation  uint64       `csv:"generation" json:"generation"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"generation", b.Generation,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentPeak         int  // peak population since the last crash
	stableWindowsCount int  // consecutive windows with a flat population
	networkOnline      bool // all portals were active at the last check
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for plateau detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Population boom: births > multiplier x rolling average
		if b := bd.checkPopulationBoom(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Population crash: dropped sharply from recent peak
		if b := bd.checkPopulationCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Stable plateau: low variance over several windows
		if b := bd.checkStablePlateau(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	if b := bd.checkPortalNetwork(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	if stats.Population > bd.recentPeak {
		bd.recentPeak = stats.Population
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

// getHistory returns retained windows, oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]WindowStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkPopulationBoom(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}
	cfg := config.Cfg().Bookmarks.PopulationBoom

	var totalBirths int
	for _, h := range history {
		totalBirths += h.Births
	}
	avgBirths := float64(totalBirths) / float64(len(history))
	if avgBirths == 0 {
		return nil
	}

	if float64(stats.Births) > avgBirths*cfg.Multiplier && stats.Births >= cfg.MinBirths {
		return &Bookmark{
			Type:        BookmarkPopulationBoom,
			Generation:  stats.WindowEndGen,
			Description: fmt.Sprintf("Births %d are %.1fx average (%.0f)", stats.Births, float64(stats.Births)/avgBirths, avgBirths),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkPopulationCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}
	cfg := config.Cfg().Bookmarks.PopulationCrash

	dropPercent := 1.0 - float64(stats.Population)/float64(bd.recentPeak)
	if dropPercent > cfg.DropPercent && stats.Population < bd.recentPeak-cfg.MinDrop {
		// Reset peak after crash
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Population

		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Generation:  stats.WindowEndGen,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.Population),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStablePlateau(stats WindowStats) *Bookmark {
	cfg := config.Cfg().Bookmarks.StablePlateau

	if stats.Population < cfg.MinPopulation {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	pops := make([]float64, 0, 5)
	for _, h := range history[len(history)-4:] {
		pops = append(pops, float64(h.Population))
	}
	pops = append(pops, float64(stats.Population))

	if CoefficientOfVariation(pops) < cfg.CVThreshold {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == cfg.StableWindows { // trigger exactly once per plateau
		return &Bookmark{
			Type:        BookmarkStablePlateau,
			Generation:  stats.WindowEndGen,
			Description: fmt.Sprintf("Population held near %d over %d+ windows", stats.Population, cfg.StableWindows),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkPortalNetwork(stats WindowStats) *Bookmark {
	online := stats.TotalPortals > 0 && stats.ActivePortals == stats.TotalPortals
	defer func() { bd.networkOnline = online }()

	if online && !bd.networkOnline {
		return &Bookmark{
			Type:        BookmarkPortalNetworkOnline,
			Generation:  stats.WindowEndGen,
			Description: fmt.Sprintf("All %d portals active", stats.TotalPortals),
		}
	}
	return nil
}
