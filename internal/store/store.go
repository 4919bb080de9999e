// Package store is the persistence gateway: every SQL statement the API
// issues lives here, and transaction boundaries are owned here.
package store

import (
	"context"

	"github.com/hbenali/storefront/internal/models"
	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// ---------------------------------- Users ----------------------------------

func (s *Store) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := s.DB.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Create(user).Error
}

// DeleteUser is fire-and-forget: no existence check, no error when nothing
// was deleted.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Delete(&models.User{}, id).Error
}

// --------------------------------- Catalog ---------------------------------

func (s *Store) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0)
	if err := s.DB.WithContext(ctx).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	if err := s.DB.WithContext(ctx).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Store) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	if err := s.DB.WithContext(ctx).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) GetAllReviews(ctx context.Context) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	if err := s.DB.WithContext(ctx).Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// ---------------------------------- Cart -----------------------------------

func (s *Store) CreateCart(ctx context.Context, userID uint) (*models.Cart, error) {
	cart := models.Cart{UserID: userID}
	if err := s.DB.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *Store) AssignCartToUser(ctx context.Context, userID, cartID uint) error {
	return s.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("cart_id", cartID).Error
}

// CartIDForUser returns gorm.ErrRecordNotFound when the user has no cart.
func (s *Store) CartIDForUser(ctx context.Context, userID uint) (uint, error) {
	var cart models.Cart
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return 0, err
	}
	return cart.ID, nil
}

// CartRowsForUser joins the user's cart with its items and product details.
// A cart with no items yields an empty slice, not an error.
func (s *Store) CartRowsForUser(ctx context.Context, userID uint) ([]models.CartRow, error) {
	rows := make([]models.CartRow, 0)
	err := s.DB.WithContext(ctx).
		Table("carts").
		Select("carts.id AS cart_id, carts.user_id, cart_items.product_id, cart_items.quantity, products.name, products.description").
		Joins("JOIN cart_items ON cart_items.cart_id = carts.id").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("carts.user_id = ?", userID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateCartItem inserts a new (cart_id, product_id) row. A duplicate pair
// violates the idx_cart_product unique index and the storage error is
// returned as-is; there is no upsert here.
func (s *Store) CreateCartItem(ctx context.Context, cartID, productID, quantity uint) (*models.CartItem, error) {
	item := models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateCartItem sets the quantity of the matching pair and returns the
// updated row, or gorm.ErrRecordNotFound when no such pair exists.
func (s *Store) UpdateCartItem(ctx context.Context, cartID, productID, quantity uint) (*models.CartItem, error) {
	res := s.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var item models.CartItem
	if err := s.DB.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteCartItem is idempotent: deleting an absent row is not an error.
func (s *Store) DeleteCartItem(ctx context.Context, cartID, productID uint) error {
	return s.DB.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
}

// DeleteCart removes a cart in one atomic unit: the owning user's cart
// reference is nulled, the cart's items are deleted, then the cart row
// itself. Any failure rolls the whole thing back and the original error
// propagates to the caller.
func (s *Store) DeleteCart(ctx context.Context, cartID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("cart_id = ?", cartID).
			Update("cart_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cartID).
			Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Cart{}, cartID).Error
	})
}
