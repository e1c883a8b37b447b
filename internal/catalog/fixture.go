// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package catalog

// Default returns the built-in catalog served when no catalog file exists.
func Default() *Store {
	return NewStore([]Product{
		{ID: "prod_001", Name: "Samsung Galaxy A14", Description: "64GB smartphone with 50MP camera and 5000mAh battery", Price: 650000, Rating: 4.3, Category: "Electronics", Condition: "New", Location: "Kampala"},
		{ID: "prod_002", Name: "Tecno Spark 10", Description: "Budget smartphone, 128GB storage, dual SIM", Price: 480000, Rating: 4.1, Category: "Electronics", Condition: "New", Location: "Kampala"},
		{ID: "prod_003", Name: "HP Laptop 15", Description: "Intel Core i5 laptop with 8GB RAM and 256GB SSD", Price: 1850000, Rating: 4.5, Category: "Electronics", Condition: "Used", Location: "Entebbe"},
		{ID: "prod_004", Name: "Men's Leather Shoes", Description: "Brown formal leather shoes, size 42", Price: 120000, Rating: 3.9, Category: "Fashion", Condition: "New", Location: "Jinja"},
		{ID: "prod_005", Name: "Kitenge Dress", Description: "Handmade African print dress", Price: 85000, Rating: 4.7, Category: "Fashion", Condition: "New", Location: "Kampala"},
		{ID: "prod_006", Name: "Wooden Dining Table", Description: "Six-seater mahogany dining table", Price: 950000, Rating: 4.0, Category: "Furniture", Condition: "Used", Location: "Mukono"},
		{ID: "prod_007", Name: "Office Chair", Description: "Ergonomic swivel chair with lumbar support", Price: 320000, Rating: 4.2, Category: "Furniture", Condition: "New", Location: "Kampala"},
		{ID: "prod_008", Name: "Rice Cooker", Description: "1.8L electric rice cooker with steamer", Price: 95000, Rating: 4.4, Category: "Home Appliances", Condition: "New", Location: "Wakiso"},
		{ID: "prod_009", Name: "Bluetooth Speaker", Description: "Portable waterproof speaker with 12 hour battery", Price: 150000, Rating: 4.6, Category: "Electronics", Condition: "New", Location: "Gulu"},
		{ID: "prod_010", Name: "Bicycle", Description: "Mountain bike, 21 speed, steel frame", Price: 700000, Rating: 3.8, Category: "Sports", Condition: "Used", Location: "Mbarara"},
	})
}
