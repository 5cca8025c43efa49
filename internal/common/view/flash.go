package view

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/AlibekovAA/album-catalog/internal/common/constants"
	"github.com/AlibekovAA/album-catalog/internal/common/logger"
)

type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// FlashStore keeps one-shot messages in a signed cookie between a redirect
// and the page that follows it.
type FlashStore struct {
	store *sessions.CookieStore
	log   *logger.Logger
}

func NewFlashStore(secret []byte, secure bool, log *logger.Logger) *FlashStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &FlashStore{store: store, log: log}
}

func (f *FlashStore) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	sess, err := f.store.Get(r, constants.FlashSessionName)
	if err != nil {
		// a cookie signed with an old secret; start over with a fresh session
		f.log.WithFields(r.Context(), logger.Fields{"action": "flash_cookie_invalid"}).Debugf("flash cookie discarded: %v", err)
	}
	sess.AddFlash(Flash{Category: category, Message: message})
	if err := sess.Save(r, w); err != nil {
		f.log.WithFields(r.Context(), logger.Fields{"action": "flash_save_failed"}).Errorf("failed to save flash: %v", err)
	}
}

// Pop returns and clears queued messages. It must run before the response
// body is written.
func (f *FlashStore) Pop(w http.ResponseWriter, r *http.Request) []Flash {
	sess, err := f.store.Get(r, constants.FlashSessionName)
	if err != nil || sess.IsNew {
		return nil
	}

	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		f.log.WithFields(r.Context(), logger.Fields{"action": "flash_save_failed"}).Errorf("failed to clear flashes: %v", err)
	}

	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if fl, ok := v.(Flash); ok {
			flashes = append(flashes, fl)
		}
	}
	return flashes
}
