package sqlstore

import (
	"context"

	"api_commerce/internal/salejoin"
)

// insertSaleRows stores raw rows without touching stock or checking
// references.
func (r *SaleStore) insertSaleRows(ctx context.Context, h salejoin.Header, lines ...salejoin.Line) (int64, error) {
	var id int64
	err := r.s.WithinTx(ctx, func(ctx context.Context) error {
		if err := r.s.queryRow(ctx,
			"INSERT INTO sales (customer_tax_id, generated_at) VALUES (?, ?) RETURNING id",
			h.CustomerTaxID, r.s.dialect.timeArg(h.GeneratedAt),
		).Scan(&id); err != nil {
			return err
		}
		for _, l := range lines {
			if _, err := r.s.exec(ctx,
				"INSERT INTO sale_product ("+lineColumns+") VALUES (?, ?, ?, ?, ?)",
				id, l.SKU, l.Quantity, l.UnitPriceMinor, l.ProductName,
			); err != nil {
				return err
			}
		}
		return nil
	})
	return id, err
}
