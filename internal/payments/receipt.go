package payments

import (
	"fmt"
	"sync"
	"time"

	"github.com/speps/go-hashids/v2"
)

const receiptPrefix = "order_rcpt_"

// ReceiptGenerator issues short, unique receipt identifiers for gateway orders.
type ReceiptGenerator struct {
	mu  sync.Mutex
	h   *hashids.HashID
	seq int64
	now func() time.Time
}

func NewReceiptGenerator(salt string) (*ReceiptGenerator, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 8

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("receipt hashids: %w", err)
	}
	return &ReceiptGenerator{h: h, now: time.Now}, nil
}

func (g *ReceiptGenerator) Next() (string, error) {
	g.mu.Lock()
	g.seq++
	seq := g.seq
	g.mu.Unlock()

	id, err := g.h.EncodeInt64([]int64{g.now().UnixMilli(), seq})
	if err != nil {
		return "", fmt.Errorf("encode receipt: %w", err)
	}
	return receiptPrefix + id, nil
}
