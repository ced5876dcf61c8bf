package registry

import (
	"testing"
	"time"
)

type closable struct {
	closed int
}

func (c *closable) Close() { c.closed++ }

func TestRegistry_PutGet(t *testing.T) {
	r := New[string](time.Minute)
	r.Put("a", "alpha")

	got, ok := r.Get("a")
	if !ok || got != "alpha" {
		t.Errorf("Get(a) = %q, %v", got, ok)
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("存在しない ID が見つかりました")
	}
	if r.Len() != 1 {
		t.Errorf("Len 期待 1, 実際 %d", r.Len())
	}
}

func TestRegistry_DeleteCloses(t *testing.T) {
	r := New[*closable](time.Minute)
	c := &closable{}
	r.Put("x", c)

	r.Delete("x")

	if c.closed != 1 {
		t.Errorf("Close の呼び出し回数 期待 1, 実際 %d", c.closed)
	}
	if _, ok := r.Get("x"); ok {
		t.Error("削除後も取得できました")
	}
}

func TestRegistry_Expiry(t *testing.T) {
	r := New[*closable](20 * time.Millisecond)
	c := &closable{}
	r.Put("x", c)

	time.Sleep(50 * time.Millisecond)

	if _, ok := r.Get("x"); ok {
		t.Error("期限切れの値が取得できました")
	}
}

func TestRegistry_Flush(t *testing.T) {
	r := New[*closable](time.Minute)
	a, b := &closable{}, &closable{}
	r.Put("a", a)
	r.Put("b", b)

	r.Flush()

	if a.closed != 1 || b.closed != 1 {
		t.Errorf("Flush で Close されていません: %d, %d", a.closed, b.closed)
	}
	if r.Len() != 0 {
		t.Errorf("Flush 後の Len 期待 0, 実際 %d", r.Len())
	}
}

func TestRegistry_Touch(t *testing.T) {
	r := New[*closable](60 * time.Millisecond)
	c := &closable{}
	r.Put("x", c)

	for range 4 {
		time.Sleep(30 * time.Millisecond)
		if !r.Touch("x") {
			t.Fatal("延長中の値が期限切れになりました")
		}
	}
	if _, ok := r.Get("x"); !ok {
		t.Error("Touch で延長した値が取得できません")
	}

	r.Delete("x")
	if r.Touch("x") {
		t.Error("削除済みの値を延長できました")
	}
	if r.Len() != 0 {
		t.Errorf("削除済みの値が復活しました: Len %d", r.Len())
	}
}
