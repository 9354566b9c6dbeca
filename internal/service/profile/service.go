package profile

import (
	"errors"
	"strings"
	"sync"

	model "github.com/darlyn-ai/darlyn/backend/internal/model/profile"
	"github.com/darlyn-ai/darlyn/backend/internal/store"
)

// ErrNameRequired reports a save attempt with a blank display name. The
// first-run flow requires one.
var ErrNameRequired = errors.New("name is required")

// Service holds the single user identity record. Single writer, UI driven;
// the lock only guards against concurrent HTTP handlers.
type Service struct {
	mu      sync.RWMutex
	current model.UserProfile
	store   *store.Store
}

// NewService loads the stored profile, defaulting to an empty record when
// nothing was ever saved.
func NewService(st *store.Store) *Service {
	s := &Service{store: st}
	if st != nil {
		var stored model.UserProfile
		if st.Load(store.SlotUserProfile, &stored) {
			s.current = stored
		}
	}
	return s
}

// Get returns the current profile.
func (s *Service) Get() model.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save replaces the profile. The name must be non-blank; the photo is
// optional and an empty value clears it.
func (s *Service) Save(name, photoDataURI string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}

	s.mu.Lock()
	s.current = model.UserProfile{Name: name, PhotoDataURI: photoDataURI}
	s.persistLocked()
	s.mu.Unlock()
	return nil
}

// SetPhoto updates only the photo, leaving the name untouched. Unlike Save it
// never validates the name, so a photo can be set before first-run completes.
func (s *Service) SetPhoto(photoDataURI string) {
	s.mu.Lock()
	s.current.PhotoDataURI = photoDataURI
	s.persistLocked()
	s.mu.Unlock()
}

func (s *Service) persistLocked() {
	if s.store == nil {
		return
	}
	s.store.Save(store.SlotUserProfile, s.current)
}
