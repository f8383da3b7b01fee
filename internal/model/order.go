package model

import "time"

const (
	OrderStatusNew        = "new"
	OrderStatusPacked     = "packed"
	OrderStatusProcessing = "processing"
	OrderStatusDelivered  = "delivered"
	OrderStatusReturn     = "return"
)

// Statuses lists every status an order may hold. There is no transition
// graph: an order may move from any status to any other.
var Statuses = []string{
	OrderStatusNew,
	OrderStatusPacked,
	OrderStatusProcessing,
	OrderStatusDelivered,
	OrderStatusReturn,
}

func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

type Order struct {
	ID           int64     `json:"id"`
	ProductName  string    `json:"productName"`
	CreationDate time.Time `json:"creationDate"`
	Status       string    `json:"status"`
}

type DeliverySetting struct {
	ID           string `json:"id"`
	SettingName  string `json:"settingName"`
	SettingValue string `json:"settingValue"`
}
