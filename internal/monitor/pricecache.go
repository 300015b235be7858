package monitor

import (
	"sync"
)

// Константы FNV-1a для 32-битного хэша
const (
	fnvOffset32 = uint32(2166136261)
	fnvPrime32  = uint32(16777619)
)

// fnvHash вычисляет FNV-1a hash строки без аллокаций
func fnvHash(s string) uint32 {
	h := fnvOffset32
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime32
	}
	return h
}

// PriceCache - шардированный кэш последних цен базовых акций
//
// Назначение:
// Превращает абсолютный ряд цен в относительное изменение между циклами
// опроса. Ключ - код базовой акции, не облигации: несколько облигаций
// могут ссылаться на одну акцию и обязаны видеть одинаковую предыдущую
// цену внутри цикла.
//
// Конкурентность:
// Update вызывается воркерами пула параллельно. Шардирование по ключу
// с мьютексом на шард сериализует read-modify-write по одному ключу:
// гонка "двое читают старую цену, оба пишут" исключена.
//
// Холодный старт:
// Первое наблюдение ключа за время жизни процесса возвращает изменение 0
// и сохраняет цену. Это осознанная политика, а не ошибка: в первом цикле
// после старта сигнал по такой акции невозможен.
type PriceCache struct {
	shards    []*cacheShard
	numShards uint32
}

// cacheShard - один шард с собственным мьютексом
type cacheShard struct {
	prices map[string]float64
	mu     sync.Mutex
}

// defaultCacheShards - количество шардов по умолчанию
const defaultCacheShards = 16

// NewPriceCache создаёт кэш с указанным количеством шардов.
// numShards <= 0 даёт значение по умолчанию.
func NewPriceCache(numShards int) *PriceCache {
	if numShards <= 0 {
		numShards = defaultCacheShards
	}

	shards := make([]*cacheShard, numShards)
	for i := range shards {
		shards[i] = &cacheShard{prices: make(map[string]float64)}
	}

	return &PriceCache{
		shards:    shards,
		numShards: uint32(numShards),
	}
}

func (c *PriceCache) shard(key string) *cacheShard {
	return c.shards[fnvHash(key)%c.numShards]
}

// Update записывает новую цену и возвращает относительное изменение
// (newPrice - prev) / prev.
//
// Первое наблюдение ключа возвращает 0. Сохранённое значение заменяется
// безусловно - независимо от того, сработает ли по паре сигнал.
// Неположительная сохранённая цена трактуется как холодный старт,
// чтобы исключить деление на ноль на мусорных данных.
func (c *PriceCache) Update(key string, newPrice float64) float64 {
	s := c.shard(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, seen := s.prices[key]
	s.prices[key] = newPrice

	if !seen || prev <= 0 {
		return 0
	}

	return (newPrice - prev) / prev
}

// Peek возвращает сохранённую цену без изменения состояния (для тестов и API)
func (c *PriceCache) Peek(key string) (float64, bool) {
	s := c.shard(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.prices[key]
	return price, ok
}

// Len возвращает количество отслеживаемых ключей
func (c *PriceCache) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += len(s.prices)
		s.mu.Unlock()
	}
	return total
}
