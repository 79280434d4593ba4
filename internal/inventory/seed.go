package inventory

import "github.com/fjod/go_cart/cartsync/internal/domain"

const imageBase = "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/"

var demoCatalog = []struct {
	product domain.Product
	amount  int
}{
	{domain.Product{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: 179.9, ImageURL: imageBase + "tenis1.jpg"}, 3},
	{domain.Product{ID: 2, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: 139.9, ImageURL: imageBase + "tenis2.jpg"}, 5},
	{domain.Product{ID: 3, Title: "Tênis Adidas Duramo Lite 2.0", Price: 219.9, ImageURL: imageBase + "tenis3.jpg"}, 2},
	{domain.Product{ID: 4, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: 139.9, ImageURL: imageBase + "tenis2.jpg"}, 1},
	{domain.Product{ID: 5, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: 139.9, ImageURL: imageBase + "tenis2.jpg"}, 5},
	{domain.Product{ID: 6, Title: "Tênis Adidas Duramo Lite 2.0", Price: 219.9, ImageURL: imageBase + "tenis3.jpg"}, 10},
}
