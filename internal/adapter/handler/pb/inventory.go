// Package pb holds the message types and service descriptor of the
// stockroom.v1.InventoryService gRPC API. Messages travel as JSON using the
// codec registered in codec.go.
package pb

type AddItemRequest struct {
	Name     string `json:"name"`
	Quantity int32  `json:"quantity"`
}

func (x *AddItemRequest) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

func (x *AddItemRequest) GetQuantity() int32 {
	if x != nil {
		return x.Quantity
	}
	return 0
}

type RemoveItemRequest struct {
	Name string `json:"name"`
}

func (x *RemoveItemRequest) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

type UpdateQuantityRequest struct {
	Name        string `json:"name"`
	NewQuantity int32  `json:"new_quantity"`
}

func (x *UpdateQuantityRequest) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

func (x *UpdateQuantityRequest) GetNewQuantity() int32 {
	if x != nil {
		return x.NewQuantity
	}
	return 0
}

type GetInventoryRequest struct{}

type Item struct {
	Name     string `json:"name"`
	Quantity int32  `json:"quantity"`
}

type GetInventoryResponse struct {
	Inventory []*Item `json:"inventory"`
}

func (x *GetInventoryResponse) GetInventory() []*Item {
	if x != nil {
		return x.Inventory
	}
	return nil
}

// StockRequest names the item for PurchaseItem and ReturnItem.
type StockRequest struct {
	Name string `json:"name"`
}

func (x *StockRequest) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (x *MessageResponse) GetMessage() string {
	if x != nil {
		return x.Message
	}
	return ""
}

type StockResponse struct {
	Message  string `json:"message"`
	Quantity int32  `json:"quantity"`
}

func (x *StockResponse) GetMessage() string {
	if x != nil {
		return x.Message
	}
	return ""
}

func (x *StockResponse) GetQuantity() int32 {
	if x != nil {
		return x.Quantity
	}
	return 0
}
