package registry

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const cleanupInterval = 5 * time.Minute

// Closer は登録解除の際に後始末が必要な値が実装します。
type Closer interface {
	Close()
}

// Registry は ID をキーに値を一定時間保持するインメモリのレジストリです。
// 取得のたびに有効期限を延長し、期限切れや削除の際に Closer を呼び出します。
type Registry[T any] struct {
	items *cache.Cache
	ttl   time.Duration
}

// New は ttl の間アクセスのない値を破棄する Registry を生成します。
func New[T any](ttl time.Duration) *Registry[T] {
	c := cache.New(ttl, cleanupInterval)
	c.OnEvicted(func(_ string, v any) {
		if closer, ok := v.(Closer); ok {
			closer.Close()
		}
	})
	return &Registry[T]{items: c, ttl: ttl}
}

// Put は値を登録します。同じ ID の値は置き換えられます。
func (r *Registry[T]) Put(id string, v T) {
	r.items.Set(id, v, r.ttl)
}

// Get は ID に対応する値を返し、有効期限を延長します。
func (r *Registry[T]) Get(id string) (T, bool) {
	var zero T
	raw, ok := r.items.Get(id)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	// 取得と延長の間に削除された値は復活させない
	_ = r.items.Replace(id, v, r.ttl)
	return v, true
}

// Touch は値を取り出さずに有効期限を延長します。値がなければ false を返します。
func (r *Registry[T]) Touch(id string) bool {
	raw, ok := r.items.Get(id)
	if !ok {
		return false
	}
	return r.items.Replace(id, raw, r.ttl) == nil
}

// Delete は値を削除します。値が Closer なら Close が呼ばれます。
func (r *Registry[T]) Delete(id string) {
	r.items.Delete(id)
}

// Len は登録されている値の数を返します。期限切れで未回収のものも含みます。
func (r *Registry[T]) Len() int {
	return r.items.ItemCount()
}

// Flush はすべての値を削除します。OnEvicted は呼ばれないため、Closer を先に呼び出します。
func (r *Registry[T]) Flush() {
	for _, item := range r.items.Items() {
		if closer, ok := item.Object.(Closer); ok {
			closer.Close()
		}
	}
	r.items.Flush()
}
