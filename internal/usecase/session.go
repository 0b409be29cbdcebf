package usecase

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/clinicadelvalle/asistente/internal/entity"
)

const defaultSessionCapacity = 1024

// session es el estado en memoria de un usuario: su thread en OpenAI y el
// contexto de conversación. El mutex serializa todos los mensajes de ese
// usuario; usuarios distintos avanzan en paralelo.
type session struct {
	mu       sync.Mutex
	threadID string
	context  *entity.ConversationContext
}

// sessionRegistry mapea user_id a su session. El cache LRU acota la memoria
// cuando hay muchos usuarios; una session desalojada se reconstruye desde la
// base en el próximo mensaje.
type sessionRegistry struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *session]
}

func newSessionRegistry(capacity int) (*sessionRegistry, error) {
	if capacity <= 0 {
		capacity = defaultSessionCapacity
	}
	cache, err := lru.New[string, *session](capacity)
	if err != nil {
		return nil, err
	}
	return &sessionRegistry{cache: cache}, nil
}

// getOrCreate nunca hace I/O: el lock del registry se sostiene solo durante
// el lookup. Cargar contexto y crear el thread pasa después, bajo el lock de
// la session.
func (r *sessionRegistry) getOrCreate(userID string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.cache.Get(userID); ok {
		return s
	}
	s := &session{}
	r.cache.Add(userID, s)
	return s
}
