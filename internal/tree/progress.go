// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tree

import (
	"fmt"
	"time"
)

// ProgressLog is the ordered, human-readable trace of one run: an entry
// and an elapsed-time line per expanded (level, topic) pair, then a total.
type ProgressLog struct {
	lines []string
}

// Enter records that topic is being expanded at level.
func (l *ProgressLog) Enter(level int, topic string) {
	l.lines = append(l.lines, fmt.Sprintf("Level %d: Generating subtopics for '%s'", level, topic))
}

// Exit records how long the expansion of topic at level took, including
// its subtree.
func (l *ProgressLog) Exit(level int, topic string, elapsed time.Duration) {
	l.lines = append(l.lines, fmt.Sprintf("Time taken for level %d with topic '%s': %.2f seconds", level, topic, elapsed.Seconds()))
}

// Total records the wall-clock time of the whole run.
func (l *ProgressLog) Total(elapsed time.Duration) {
	l.lines = append(l.lines, fmt.Sprintf("Total time to generate: %.2f seconds", elapsed.Seconds()))
}

// Lines returns a copy of the recorded lines.
func (l *ProgressLog) Lines() []string {
	return append([]string(nil), l.lines...)
}

// Len returns the number of recorded lines.
func (l *ProgressLog) Len() int {
	return len(l.lines)
}
