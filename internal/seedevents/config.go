package seedevents

// Config holds configuration for the dataset seeder.
type Config struct {
	DataRoot       string  // Data root to seed
	NumVideos      int     // Number of videos to generate
	EventsPerVideo int     // Number of events per video
	FPS            float64 // Frame rate used to derive timestamps
	Seed           int64   // Random seed; same seed yields the same dataset
	StemPrefix     string  // Prefix for generated video stems
	Matches        bool    // Group consecutive video pairs into matches
	PrettyJSON     bool    // Indent generated documents
}

// Stats holds seeding statistics.
type Stats struct {
	VideosWritten  int
	EventsWritten  int
	MatchesWritten int
}
