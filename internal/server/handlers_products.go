package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jinford/shelf-assistant/pkg/models"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// handleCreateProduct は商品を作成します
func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, r, validationError("invalid request body: "+err.Error()))
		return
	}

	created, err := s.deps.Products.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, "Product created successfully", created)
}

// handleListProducts は商品一覧を返します
//
// skip/limitによるページングとsearchによるキーワード絞り込みに
// 対応します。totalはページングに関係なく全一致件数です。
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	skip, err := parseQueryInt(r, "skip", 0)
	if err != nil || skip < 0 {
		writeError(w, r, validationError("skip must be a non-negative integer"))
		return
	}
	limit, err := parseQueryInt(r, "limit", defaultListLimit)
	if err != nil || limit < 1 || limit > maxListLimit {
		writeError(w, r, validationError("limit must be an integer between 1 and 1000"))
		return
	}
	search := r.URL.Query().Get("search")

	var products []*models.Product
	if search != "" {
		products, err = s.deps.Products.Search(r.Context(), search)
	} else {
		products, err = s.deps.Products.List(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	total := len(products)
	page := skip/limit + 1

	start := skip
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	writeList(w, "Products retrieved successfully", products[start:end], total, page, limit)
}

// handleGetProduct はIDで商品を取得します
func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	product, err := s.deps.Products.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, "Product retrieved successfully", product)
}

// handleUpdateProduct は商品を部分更新します
func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// 存在確認を先に行い、空ボディの400より404を優先する
	if _, err := s.deps.Products.Get(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	var in models.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, r, validationError("invalid request body: "+err.Error()))
		return
	}

	updated, err := s.deps.Products.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, "Product updated successfully", updated)
}

// handleDeleteProduct は商品を削除します
func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.deps.Products.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, "Product deleted successfully", nil)
}

// productID はパスパラメータから商品IDを取り出します
func productID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, validationError("invalid product id: " + raw)
	}
	return id, nil
}

// parseQueryInt はクエリパラメータを整数として取り出します
func parseQueryInt(r *http.Request, key string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}
