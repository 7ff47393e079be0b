package nav

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter_NavigateAndHistory(t *testing.T) {
	r := NewRouter("/dashboard", "/login")

	r.Navigate("/projects/p1")
	r.Navigate("/projects/p1")
	r.Navigate("/login")

	assert.Equal(t, "/login", r.Location())
	assert.True(t, r.OnLoginView())
	assert.Equal(t, []string{"/dashboard", "/projects/p1"}, r.History())
}

func TestRouter_Back(t *testing.T) {
	r := NewRouter("/dashboard", "/login")
	assert.False(t, r.Back())

	r.Navigate("/projects/p1")
	r.Navigate("/projects/p2")

	assert.True(t, r.Back())
	assert.Equal(t, "/projects/p1", r.Location())
	assert.Equal(t, []string{"/dashboard"}, r.History())

	assert.True(t, r.Back())
	assert.Equal(t, "/dashboard", r.Location())
	assert.Empty(t, r.History())
}

func TestRouter_HistoryIsBounded(t *testing.T) {
	r := NewRouter("/0", "/login")
	for i := range maxHistory + 10 {
		r.Navigate("/" + string(rune('a'+i%26)) + "/" + string(rune('0'+i%10)))
	}
	assert.Len(t, r.History(), maxHistory)
}

func TestRouter_Listeners(t *testing.T) {
	r := NewRouter("/dashboard", "/login")

	var got []string
	unsubscribe := r.OnNavigate(func(from, to string) {
		got = append(got, from+"->"+to)
	})

	r.Navigate("/login")
	unsubscribe()
	r.Navigate("/dashboard")

	assert.Equal(t, []string{"/dashboard->/login"}, got)
}

func TestRouter_ListenerMayNavigate(t *testing.T) {
	r := NewRouter("/dashboard", "/login")
	r.OnNavigate(func(from, to string) {
		if to == "/login" && from == "/dashboard" {
			r.Navigate("/login?expired=1")
		}
	})

	r.Navigate("/login")
	assert.Equal(t, "/login?expired=1", r.Location())
}

func TestRouter_RequireAuth(t *testing.T) {
	r := NewRouter("/projects/p1", "/login")

	assert.True(t, r.RequireAuth(true))
	assert.Equal(t, "/projects/p1", r.Location())

	assert.False(t, r.RequireAuth(false))
	assert.Equal(t, "/login", r.Location())
}

func TestRouter_ConcurrentNavigate(t *testing.T) {
	r := NewRouter("/", "/login")

	var mu sync.Mutex
	calls := 0
	r.OnNavigate(func(from, to string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				r.Navigate("/login")
			} else {
				r.Navigate("/dashboard")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, calls, len(r.History()))
}
