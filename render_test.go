package collage

import "testing"

var _ ProxyProvider = (*Renderer)(nil)

func TestRendererAcquireWithoutImage(t *testing.T) {
	r := NewRenderer(newTestStore(nil))

	if err := r.Acquire(1); err == nil {
		t.Fatalf("acquire with no image did not error")
	}
	if r.proxyActive[1] {
		t.Errorf("failed acquire marked the proxy active")
	}

	// Release of a never-acquired id is a no-op.
	r.Release(1)
}

func TestRendererRemoveImageClearsState(t *testing.T) {
	r := NewRenderer(newTestStore(nil))
	r.proxyActive[3] = true

	r.RemoveImage(3)
	if r.proxyActive[3] {
		t.Errorf("proxy flag survived RemoveImage")
	}
}
