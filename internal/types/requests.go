package types

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// BulkImportRequest imports either inline menu data or a stored template.
type BulkImportRequest struct {
	StartDate  string    `json:"startDate"`
	MenuData   *MenuData `json:"menuData"`
	TemplateID *uint     `json:"templateId"`
}

// ApplyTemplateRequest projects a stored template from a start date.
type ApplyTemplateRequest struct {
	StartDate string `json:"startDate"`
}

// MealItemInput references a dish by id or by name.
type MealItemInput struct {
	DishID    uint     `json:"dishId"`
	Name      string   `json:"name"`
	Allergens []string `json:"allergens"`
	Order     int      `json:"order"`
}

// MealInput is one meal of a manually edited menu.
type MealInput struct {
	Type  string          `json:"type" binding:"required,oneof=breakfast lunch dinner"`
	Items []MealItemInput `json:"items"`
}

// MenuRequest creates or fully replaces a menu.
type MenuRequest struct {
	Date  string      `json:"date"`
	Meals []MealInput `json:"meals"`
}

// DishAllergensRequest replaces the allergen set of a dish.
type DishAllergensRequest struct {
	Allergens []string `json:"allergens"`
}

// InferAllergensRequest asks for the inferred allergens of a dish name.
type InferAllergensRequest struct {
	Name string `json:"name" binding:"required"`
}

// PlateTemplateRequest creates or updates a plate template by name.
type PlateTemplateRequest struct {
	Name      string   `json:"name"`
	Allergens []string `json:"allergens"`
}

// ImportTemplateRequest stores menu data as a named template.
type ImportTemplateRequest struct {
	Name     string    `json:"name" binding:"required"`
	MenuData *MenuData `json:"menuData" binding:"required"`
}

// RenameTemplateRequest renames a template.
type RenameTemplateRequest struct {
	Name string `json:"name" binding:"required"`
}

// TemplateItemInput places a dish in a template meal.
type TemplateItemInput struct {
	DishID uint `json:"dishId" binding:"required"`
	Order  int  `json:"order"`
}

// TemplateMealItemsRequest replaces the items of one template meal.
type TemplateMealItemsRequest struct {
	Items []TemplateItemInput `json:"items"`
}

// ReorderRequest lists item ids in their new order.
type ReorderRequest struct {
	ItemIDs []uint `json:"itemIds" binding:"required"`
}

// TemplateItemDishRequest swaps the dish of a template item.
type TemplateItemDishRequest struct {
	Name      string   `json:"name" binding:"required"`
	Allergens []string `json:"allergens"`
}

// SettingValueRequest sets one setting.
type SettingValueRequest struct {
	Value string `json:"value"`
}

// BulkSettingsRequest sets many settings at once.
type BulkSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}
