package element

import "fmt"

type Breaker struct {
	Closed bool
}

func NewBreaker(closed bool) *Breaker {
	return &Breaker{Closed: closed}
}

func (b *Breaker) Clone() *Breaker {
	c := *b
	return &c
}

func (b *Breaker) String() string {
	return fmt.Sprintf("Breaker: Closed=[%t]", b.Closed)
}
