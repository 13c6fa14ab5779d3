package store

// ChunkType enumerates the kinds of chunk a file can be decomposed into.
type ChunkType string

const (
	ChunkFunction ChunkType = "function"
	ChunkClass    ChunkType = "class"
	ChunkMethod   ChunkType = "method"
	ChunkType_    ChunkType = "type"
	ChunkImport   ChunkType = "import"
	ChunkConstant ChunkType = "constant"
	ChunkConfig   ChunkType = "config"
)

// File is a row of the files table.
type File struct {
	ID          int64
	Path        string
	Language    string
	Hash        string
	Size        int64
	LastIndexed string // RFC3339
}

// ChunkInput is the caller-supplied shape for inserting a new chunk.
type ChunkInput struct {
	ChunkKey    string // stable content-addressed key, sha256(path:ls:le)[:16]
	LineStart   int
	LineEnd     int
	Type        string
	Name        *string
	Parent      *string
	Text        string
	Imports     []string
	Exported    bool
	ContentHash string
}

// Chunk is a chunk row joined with its owning file's path and language.
type Chunk struct {
	ID          int64
	FileID      int64
	FilePath    string
	Language    string
	ChunkKey    string
	LineStart   int
	LineEnd     int
	Type        string
	Name        *string
	Parent      *string
	Text        string
	Imports     []string
	Exported    bool
	ContentHash string
}

// VectorHit is one KNN result: a chunk id and its distance to the query.
type VectorHit struct {
	ChunkID  int64
	Distance float64
}

// FTSHit is one full-text result: a chunk id and its FTS5 rank (lower is
// better, typically negative).
type FTSHit struct {
	ChunkID int64
	Rank    float64
}

// MatchMode selects how SearchChunks compares the name filter.
type MatchMode string

const (
	MatchExact    MatchMode = "exact"
	MatchPrefix   MatchMode = "prefix"
	MatchContains MatchMode = "contains"
)

// SearchChunksFilter narrows an AST/symbol lookup.
type SearchChunksFilter struct {
	Name      string
	NameMode  MatchMode
	Type      string
	Parent    string
	Language  string
}

// EmbedderDescriptor is the (provider, model, dimensions) tuple an index was
// built with. It is recorded once in meta.index_embedder and checked by the
// indexer at the start of every subsequent index run; Open does not check it.
type EmbedderDescriptor struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
}

// Stats summarizes the current contents of the store.
type Stats struct {
	FileCount       int
	ChunkCount      int
	VectorCount     int
	FilesByLanguage map[string]int
	LastIndexed     string
}
