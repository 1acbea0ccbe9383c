package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"audiobook/model"
	"audiobook/splitter"
	"audiobook/store"
	"audiobook/types"
)

// Options tunes the service. Zero values fall back to the defaults below.
type Options struct {
	TopK             int
	HistoryWindow    int
	MaxContextTokens int
	SplitMethod      splitter.Method
	ChunkSize        int
	Overlap          int
}

const (
	DefaultTopK             = 4
	DefaultHistoryWindow    = 4
	DefaultMaxContextTokens = 3000
)

// Service is the document indexing and question-answering core. It owns
// the pipeline from raw text to a persisted collection and from a
// question to a grounded answer.
type Service struct {
	logger    *log.Logger
	store     store.VectorStorer
	embedder  model.Embedder
	completer model.Completer
	counter   model.TokenCounter
	opts      Options

	lockMu   sync.Mutex
	docLocks map[string]*sync.Mutex

	sessionMu sync.Mutex
	sessions  map[string]*Conversation
}

func NewService(
	logger *log.Logger,
	storer store.VectorStorer,
	embedder model.Embedder,
	completer model.Completer,
	counter model.TokenCounter,
	opts Options,
) *Service {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = DefaultHistoryWindow
	}
	if opts.MaxContextTokens <= 0 {
		opts.MaxContextTokens = DefaultMaxContextTokens
	}
	if opts.SplitMethod == "" {
		opts.SplitMethod = splitter.MethodChunks
	}
	return &Service{
		logger:    logger,
		store:     storer,
		embedder:  embedder,
		completer: completer,
		counter:   counter,
		opts:      opts,
		docLocks:  make(map[string]*sync.Mutex),
		sessions:  make(map[string]*Conversation),
	}
}

// IndexDocument segments and embeds text, then replaces the document's
// collection and activates it. Segmentation and embedding run before the
// old collection is touched, so a failure in either leaves the previous
// state intact and cancellation can never strand a cleared collection.
// A failure after the clear surfaces as ErrIndexingFailed: the collection
// may be partial and must not be queried until re-indexed.
func (s *Service) IndexDocument(ctx context.Context, documentID, text string, method splitter.Method, opts splitter.Options) (int, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return 0, fmt.Errorf("%w: document id is empty", types.ErrInvalidConfig)
	}
	if method == "" {
		method = s.opts.SplitMethod
		if opts.ChunkSize == 0 && opts.Overlap == 0 {
			opts = splitter.Options{ChunkSize: s.opts.ChunkSize, Overlap: s.opts.Overlap}
		}
	}

	segments, err := splitter.Split(text, method, opts)
	if err != nil {
		return 0, err
	}

	vectors, err := s.embedder.EmbedBatch(ctx, segments)
	if err != nil {
		return 0, err
	}

	units := make([]types.Unit, len(segments))
	for i, segment := range segments {
		units[i] = types.Unit{
			ID:         types.UnitID(documentID, i),
			DocumentID: documentID,
			Index:      i,
			Text:       segment,
			Embedding:  vectors[i],
		}
	}

	// Mutations for one document form a single critical section, so a
	// concurrent query never observes a half-upserted collection.
	lock := s.lockFor(documentID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.ClearCollection(ctx, documentID); err != nil {
		return 0, fmt.Errorf("%w: clearing previous collection: %v", types.ErrIndexingFailed, err)
	}
	if err := s.store.UpsertUnits(ctx, documentID, units); err != nil {
		return 0, fmt.Errorf("%w: writing units: %v", types.ErrIndexingFailed, err)
	}
	if err := s.store.Activate(ctx, documentID); err != nil {
		return 0, fmt.Errorf("%w: activating collection: %v", types.ErrIndexingFailed, err)
	}

	// History about the previous document must not leak into this one.
	s.clearAllConversations()

	s.logger.Info("indexed document", "document", documentID, "units", len(units), "method", method)
	return len(units), nil
}

// Retrieve embeds the query and returns the top-k most similar units from
// the active collection, highest score first.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) ([]types.Unit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.ErrEmptyQuery
	}
	if topK == 0 {
		topK = s.opts.TopK
	}
	if topK < 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", types.ErrInvalidConfig, topK)
	}

	active, err := s.store.ActiveCollection(ctx)
	if err != nil {
		return nil, err
	}
	if active == "" {
		return nil, types.ErrNoActiveCollection
	}

	vector, err := model.Embed(ctx, s.embedder, query)
	if err != nil {
		return nil, err
	}

	return s.store.Query(ctx, active, vector, topK)
}

// History returns the full conversation log for a session.
func (s *Service) History(sessionID string) []types.ConversationTurn {
	return s.conversation(sessionID).Turns()
}

// ClearHistory wipes one session's conversation log.
func (s *Service) ClearHistory(sessionID string) {
	s.conversation(sessionID).Clear()
}

func (s *Service) conversation(sessionID string) *Conversation {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	conv, ok := s.sessions[sessionID]
	if !ok {
		conv = NewConversation()
		s.sessions[sessionID] = conv
	}
	return conv
}

func (s *Service) clearAllConversations() {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	s.sessions = make(map[string]*Conversation)
}

func (s *Service) lockFor(documentID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.docLocks[documentID]
	if !ok {
		lock = &sync.Mutex{}
		s.docLocks[documentID] = lock
	}
	return lock
}

func (s *Service) Close() error {
	return s.store.Close()
}
