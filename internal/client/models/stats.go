package models

// DailyStat accumulates reading activity for one calendar day
// (key format "2006-01-02").
type DailyStat struct {
	Date               string `json:"date"`
	WordsRead          int    `json:"wordsRead"`
	ReadingTimeMs      int64  `json:"readingTimeMs"`
	SessionsCount      int    `json:"sessionsCount"`
	AvgWPM             int    `json:"avgWpm"`
	DocumentsCompleted int    `json:"documentsCompleted"`
}

// Lifetime is the singleton aggregate of all reading ever done on this
// install. Values only grow.
type Lifetime struct {
	TotalWordsRead          int `json:"totalWordsRead"`
	TotalDocumentsCompleted int `json:"totalDocumentsCompleted"`
}

// Streak is the singleton consecutive-days record. A day qualifies when at
// least one session of 60 seconds or more was read.
type Streak struct {
	CurrentStreak      int    `json:"currentStreak"`
	LastReadDate       string `json:"lastReadDate"`
	StreakFreezeActive bool   `json:"streakFreezeActive"`
	StreakFreezeUsedAt string `json:"streakFreezeUsedAt,omitempty"`
}
