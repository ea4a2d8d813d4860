package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
)

var ErrMissingTenant = errors.New("restaurant scope missing")

// restaurantScope pulls the authenticated restaurant ID off the context.
func restaurantScope(c *gin.Context) (string, error) {
	v, exists := c.Get("restaurantID")
	if !exists {
		return "", ErrMissingTenant
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "", ErrMissingTenant
	}
	return id, nil
}
