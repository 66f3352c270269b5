package source

import "strings"

// Flat SELECTs per dataset. {{name}} stands for the customer's full name, which
// sqlite spells with || instead of CONCAT.
var baseQueries = map[string]string{
	"orders": `SELECT o.order_id, o.user_id, o.order_date, o.total_amount
FROM orders o
ORDER BY o.order_id`,

	"order_items": `SELECT oi.order_item_id, oi.order_id, o.order_date,
       u.username, {{name}} AS customer_name, u.role, a.state,
       p.product_name, p.price, oi.quantity, oi.unit_price, oi.total_price
FROM order_items oi
JOIN orders o ON oi.order_id = o.order_id
JOIN products p ON oi.product_id = p.product_id
LEFT JOIN users u ON o.user_id = u.user_id
LEFT JOIN addresses a ON o.shipping_address_id = a.address_id
ORDER BY oi.order_item_id`,

	"products": `SELECT p.product_id, p.product_name, p.brand_id, b.brand_name, p.price
FROM products p
JOIN brands b ON p.brand_id = b.brand_id
ORDER BY p.product_id`,

	"inventory": `SELECT p.product_id, p.product_name, b.brand_name, i.stock_quantity
FROM inventory i
JOIN products p ON i.product_id = p.product_id
JOIN brands b ON p.brand_id = b.brand_id
ORDER BY p.product_id`,
}

// queriesFor renders the dataset queries for a driver dialect.
func queriesFor(driver string) map[string]string {
	name := "CONCAT(u.first_name, ' ', u.last_name)"
	if driver == "sqlite" {
		name = "u.first_name || ' ' || u.last_name"
	}
	out := make(map[string]string, len(baseQueries))
	for ds, q := range baseQueries {
		out[ds] = strings.ReplaceAll(q, "{{name}}", name)
	}
	return out
}
