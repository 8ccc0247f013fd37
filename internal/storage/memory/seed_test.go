package memory

import "api_commerce/internal/salejoin"

// insertSaleRows stores raw header and line rows as given, such as lines
// pointing at unknown SKUs.
func (l *LocalStorage) insertSaleRows(h salejoin.Header, lines ...salejoin.Line) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if h.ID == 0 {
		l.nextSaleID++
		h.ID = l.nextSaleID
	} else if h.ID > l.nextSaleID {
		l.nextSaleID = h.ID
	}
	l.headers = append(l.headers, h)
	for _, line := range lines {
		line.SaleID = h.ID
		l.lines = append(l.lines, line)
	}
}
