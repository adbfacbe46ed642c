package domain

import "time"

// Category is a material category or subcategory (ParentID set).
type Category struct {
	CategoryID  string    `json:"id" dynamodbav:"category_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Slug        string    `json:"slug" dynamodbav:"slug"`
	ParentID    *string   `json:"parent_id,omitempty" dynamodbav:"parent_id"`
	Description string    `json:"description,omitempty" dynamodbav:"description"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
}
