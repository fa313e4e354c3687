package domain

type Product struct {
	ProductID     string  `json:"product_id" dynamodbav:"product_id"`
	Name          string  `json:"name" dynamodbav:"name"`
	SKU           string  `json:"sku" dynamodbav:"sku"`
	Price         float64 `json:"price" dynamodbav:"price"`
	StockQuantity int     `json:"stock_quantity" dynamodbav:"stock_quantity"`
}

// StockAdjustment is the result view returned by a warehouse stock change.
type StockAdjustment struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	NewQuantity int    `json:"new_quantity"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}
