package restaurants

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foodmap/internal/api"
	"foodmap/internal/apperr"
	"foodmap/internal/database"
	"foodmap/internal/handler"
	"foodmap/internal/handler/handlertest"
	"foodmap/internal/imaging"
	"foodmap/internal/model"
	"foodmap/internal/store"
	"foodmap/internal/worker"

	"github.com/stretchr/testify/require"
)

func restore() {
	listRestaurants = store.ListRestaurants
	countRestaurants = store.CountRestaurants
	listFeaturedRestaurants = store.ListFeaturedRestaurants
	getRestaurantByID = store.GetRestaurantByID
	createRestaurant = store.CreateRestaurant
	updateRestaurant = store.UpdateRestaurant
	updateRestaurantImage = store.UpdateRestaurantImage
	deleteRestaurant = store.DeleteRestaurant
	clearAllRestaurants = store.ClearAllRestaurants
	listDishes = store.ListDishes
	listRestaurantImages = store.ListRestaurantImages
	imageInGallery = store.ImageInGallery
}

func notInGallery(context.Context, database.Querier, string) (bool, error) { return false, nil }

func ptr[T any](v T) *T { return &v }

func validRequest() api.RestaurantRequest {
	return api.RestaurantRequest{
		Name:      "Sakura Ramen",
		Address:   "1-2-3 Shibuya",
		Latitude:  ptr(35.6595),
		Longitude: ptr(139.7005),
		Cuisine:   "Japanese",
		Rating:    4.5,
	}
}

// memRestaurants is an in-memory table behind the store function vars.
type memRestaurants struct {
	rows   []model.Restaurant
	nextID int
}

func (m *memRestaurants) install() {
	createRestaurant = func(_ context.Context, _ database.Querier, r *model.Restaurant) (*model.Restaurant, error) {
		m.nextID++
		out := *r
		out.ID = m.nextID
		m.rows = append(m.rows, out)
		return &out, nil
	}
	countRestaurants = func(context.Context, database.Querier) (int, error) { return len(m.rows), nil }
}

func TestCreateHandlerMissingNameInsertsNothing(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	mem := &memRestaurants{}
	mem.install()
	before, _ := countRestaurants(context.Background(), nil)

	req := validRequest()
	req.Name = ""
	rec := handlertest.Do(e, CreateHandler(nil, imaging.NewProcessor(t.TempDir())),
		handlertest.JSON(t, http.MethodPost, "/api/admin/restaurants", req))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, handlertest.ErrorBody(t, rec), "name")

	after, _ := countRestaurants(context.Background(), nil)
	require.Equal(t, before, after)
}

func TestCreateHandlerValidation(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	createRestaurant = func(context.Context, database.Querier, *model.Restaurant) (*model.Restaurant, error) {
		t.Fatal("must not insert")
		return nil, nil
	}
	mutate := []func(r *api.RestaurantRequest){
		func(r *api.RestaurantRequest) { r.Address = "  " },
		func(r *api.RestaurantRequest) { r.Latitude = nil },
		func(r *api.RestaurantRequest) { r.Longitude = ptr(181.0) },
		func(r *api.RestaurantRequest) { r.Cuisine = "" },
		func(r *api.RestaurantRequest) { r.Rating = 5.5 },
		func(r *api.RestaurantRequest) { r.Website = ptr("not a url") },
	}
	for i, m := range mutate {
		req := validRequest()
		m(&req)
		rec := handlertest.Do(e, CreateHandler(nil, nil), handlertest.JSON(t, http.MethodPost, "/api/admin/restaurants", req))
		require.Equal(t, http.StatusBadRequest, rec.Code, "case %d", i)
	}
}

func TestCreateHandlerUniqueIDs(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	mem := &memRestaurants{}
	mem.install()

	seen := map[int]bool{}
	for i := 0; i < 5; i++ {
		rec := handlertest.Do(e, CreateHandler(nil, nil), handlertest.JSON(t, http.MethodPost, "/api/admin/restaurants", validRequest()))
		require.Equal(t, http.StatusCreated, rec.Code)
		var r model.Restaurant
		handlertest.Decode(t, rec, &r)
		require.False(t, seen[r.ID])
		seen[r.ID] = true
	}
	require.Len(t, mem.rows, 5)
}

func TestCreateHandlerRemoteImageDegrades(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	var got *model.Restaurant
	createRestaurant = func(_ context.Context, _ database.Querier, r *model.Restaurant) (*model.Restaurant, error) {
		got = r
		return r, nil
	}

	proc := imaging.NewProcessor(t.TempDir())
	req := validRequest()
	req.ImageURL = ptr(srv.URL + "/missing.jpg")
	rec := handlertest.Do(e, CreateHandler(nil, proc), handlertest.JSON(t, http.MethodPost, "/api/admin/restaurants", req))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, imaging.Placeholder(imaging.KindRestaurant), *got.ImageURL)
}

func TestListHandler(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	listRestaurants = func(_ context.Context, _ database.Querier, p store.Page) ([]model.Restaurant, error) {
		require.Equal(t, store.Page{Number: 1, Limit: 10}, p)
		return []model.Restaurant{{ID: 2}, {ID: 1}}, nil
	}
	countRestaurants = func(context.Context, database.Querier) (int, error) { return 2, nil }

	rec := handlertest.Do(e, ListHandler(nil), httptest.NewRequest(http.MethodGet, "/api/restaurants", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.PageResponse[model.Restaurant]
	handlertest.Decode(t, rec, &resp)
	require.Len(t, resp.Items, 2)
	require.Equal(t, 2, resp.Total)

	for _, q := range []string{"?page=0", "?limit=51", "?limit=0"} {
		rec = handlertest.Do(e, ListHandler(nil), httptest.NewRequest(http.MethodGet, "/api/restaurants"+q, nil))
		require.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	listRestaurants = func(context.Context, database.Querier, store.Page) ([]model.Restaurant, error) {
		return nil, apperr.Dependency("database error", errors.New("down"))
	}
	rec = handlertest.Do(e, ListHandler(nil), httptest.NewRequest(http.MethodGet, "/api/restaurants", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "details")
}

func TestFeaturedHandler(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	listFeaturedRestaurants = func(_ context.Context, _ database.Querier, limit int) ([]model.Restaurant, error) {
		require.Equal(t, featuredLimit, limit)
		return []model.Restaurant{{ID: 1, Featured: true}}, nil
	}
	rec := handlertest.Do(e, FeaturedHandler(nil), httptest.NewRequest(http.MethodGet, "/api/restaurants/featured", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"featured":true`)
}

type fakeFinder struct {
	places []model.NearbyPlace
	err    error
	radius int
}

func (f *fakeFinder) Nearby(_ context.Context, _, _ float64, radius int) ([]model.NearbyPlace, error) {
	f.radius = radius
	return f.places, f.err
}

func TestNearbyHandler(t *testing.T) {
	e := handlertest.NewEcho()
	f := &fakeFinder{places: []model.NearbyPlace{{PlaceID: "p1", Name: "Cafe"}}}

	rec := handlertest.Do(e, NearbyHandler(f), httptest.NewRequest(http.MethodGet, "/api/restaurants/nearby?lat=35.6&lng=139.7", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1500, f.radius)
	require.Contains(t, rec.Body.String(), "Cafe")

	for _, q := range []string{"", "?lat=91&lng=0", "?lat=0&lng=x", "?lat=0&lng=0&radius=0", "?lat=0&lng=0&radius=60000"} {
		rec = handlertest.Do(e, NearbyHandler(f), httptest.NewRequest(http.MethodGet, "/api/restaurants/nearby"+q, nil))
		require.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	f.err = errors.New("quota")
	rec = handlertest.Do(e, NearbyHandler(f), httptest.NewRequest(http.MethodGet, "/api/restaurants/nearby?lat=1&lng=1&radius=200", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetHandler(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	getRestaurantByID = func(_ context.Context, _ database.Querier, id int) (*model.Restaurant, error) {
		if id != 3 {
			return nil, apperr.NotFound("restaurant not found")
		}
		return &model.Restaurant{ID: 3, Name: "Sakura"}, nil
	}
	listDishes = func(context.Context, database.Querier, int) ([]model.Dish, error) {
		return []model.Dish{{ID: 1, Name: "Ramen"}}, nil
	}
	listRestaurantImages = func(context.Context, database.Querier, int) ([]model.RestaurantImage, error) {
		return []model.RestaurantImage{}, nil
	}

	rec := handlertest.Do(e, GetHandler(nil), httptest.NewRequest(http.MethodGet, "/api/restaurants/3", nil), handlertest.Params("id", "3"))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.RestaurantDetailResponse
	handlertest.Decode(t, rec, &resp)
	require.Equal(t, "Sakura", resp.Name)
	require.Len(t, resp.Dishes, 1)
	require.NotNil(t, resp.Images)

	rec = handlertest.Do(e, GetHandler(nil), httptest.NewRequest(http.MethodGet, "/api/restaurants/4", nil), handlertest.Params("id", "4"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "restaurant not found", handlertest.ErrorBody(t, rec))
}

func storedPath(proc *imaging.Processor, url string) string {
	url = strings.SplitN(url, "?", 2)[0]
	return filepath.Join(proc.Root, filepath.FromSlash(strings.TrimPrefix(url, imaging.URLPrefix)))
}

func TestUpdateHandlerJSON(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	proc := imaging.NewProcessor(t.TempDir())
	old, err := proc.Save(context.Background(), imaging.KindRestaurant, "image/jpeg", bytes.NewReader(handlertest.JPEG(t, 20, 20)))
	require.NoError(t, err)

	getRestaurantByID = func(context.Context, database.Querier, int) (*model.Restaurant, error) {
		return &model.Restaurant{ID: 3, ImageURL: &old}, nil
	}
	var updated *model.Restaurant
	updateRestaurant = func(_ context.Context, _ database.Querier, r *model.Restaurant) (*model.Restaurant, error) {
		require.Equal(t, 3, r.ID)
		updated = r
		return r, nil
	}
	imageInGallery = notInGallery

	// same image kept: file stays
	req := validRequest()
	req.ImageURL = &old
	rec := handlertest.Do(e, UpdateHandler(nil, proc, worker.Inline{}),
		handlertest.JSON(t, http.MethodPut, "/api/admin/restaurants/3", req), handlertest.Params("id", "3"))
	require.Equal(t, http.StatusOK, rec.Code)
	_, err = os.Stat(storedPath(proc, old))
	require.NoError(t, err)

	// image_url omitted: current image kept
	rec = handlertest.Do(e, UpdateHandler(nil, proc, worker.Inline{}),
		handlertest.JSON(t, http.MethodPut, "/api/admin/restaurants/3",
			`{"name":"Sakura","address":"1 Main","latitude":35,"longitude":139,"cuisine":"Japanese","rating":4}`),
		handlertest.Params("id", "3"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, updated.ImageURL)
	require.Equal(t, old, *updated.ImageURL)
	_, err = os.Stat(storedPath(proc, old))
	require.NoError(t, err)

	// explicit empty string clears: old file removed in the background
	req.ImageURL = ptr("")
	rec = handlertest.Do(e, UpdateHandler(nil, proc, worker.Inline{}),
		handlertest.JSON(t, http.MethodPut, "/api/admin/restaurants/3", req), handlertest.Params("id", "3"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, updated.ImageURL)
	_, err = os.Stat(storedPath(proc, old))
	require.True(t, os.IsNotExist(err))
}

func TestUpdateHandlerMultipart(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	proc := imaging.NewProcessor(t.TempDir())
	getRestaurantByID = func(context.Context, database.Querier, int) (*model.Restaurant, error) {
		return &model.Restaurant{ID: 3}, nil
	}
	var updated *model.Restaurant
	updateRestaurant = func(_ context.Context, _ database.Querier, r *model.Restaurant) (*model.Restaurant, error) {
		updated = r
		return r, nil
	}
	data := `{"name":"Sakura","address":"1 Main","latitude":35,"longitude":139,"cuisine":"Japanese","rating":4}`

	t.Run("bad image aborts update", func(t *testing.T) {
		updated = nil
		req := handlertest.Multipart(t, http.MethodPut, "/api/admin/restaurants/3", map[string]string{"data": data},
			handlertest.File{Field: "image", Name: "x.txt", ContentType: "text/plain", Data: []byte("x")})
		rec := handlertest.Do(e, UpdateHandler(nil, proc, worker.Inline{}), req, handlertest.Params("id", "3"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Nil(t, updated)
	})

	t.Run("corrupt jpeg aborts update", func(t *testing.T) {
		updated = nil
		req := handlertest.Multipart(t, http.MethodPut, "/api/admin/restaurants/3", map[string]string{"data": data},
			handlertest.File{Field: "image", Name: "x.jpg", ContentType: "image/jpeg", Data: []byte("not really")})
		rec := handlertest.Do(e, UpdateHandler(nil, proc, worker.Inline{}), req, handlertest.Params("id", "3"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Nil(t, updated)
	})

	t.Run("image stored with freshness token", func(t *testing.T) {
		req := handlertest.Multipart(t, http.MethodPut, "/api/admin/restaurants/3", map[string]string{"data": data},
			handlertest.File{Field: "image", Name: "x.jpg", ContentType: "image/jpeg", Data: handlertest.JPEG(t, 1600, 1200)})
		rec := handlertest.Do(e, UpdateHandler(nil, proc, worker.Inline{}), req, handlertest.Params("id", "3"))
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, updated.ImageURL)
		require.True(t, strings.HasPrefix(*updated.ImageURL, "/uploads/restaurant/"))
		require.Contains(t, *updated.ImageURL, "?v=")
		_, err := os.Stat(storedPath(proc, *updated.ImageURL))
		require.NoError(t, err)
	})

	t.Run("store failure removes new file", func(t *testing.T) {
		updateRestaurant = func(context.Context, database.Querier, *model.Restaurant) (*model.Restaurant, error) {
			return nil, apperr.Dependency("database error", errors.New("down"))
		}
		before, _ := os.ReadDir(filepath.Join(proc.Root, "restaurant"))
		req := handlertest.Multipart(t, http.MethodPut, "/api/admin/restaurants/3", map[string]string{"data": data},
			handlertest.File{Field: "image", Name: "x.jpg", ContentType: "image/jpeg", Data: handlertest.JPEG(t, 10, 10)})
		rec := handlertest.Do(e, UpdateHandler(nil, proc, worker.Inline{}), req, handlertest.Params("id", "3"))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		after, _ := os.ReadDir(filepath.Join(proc.Root, "restaurant"))
		require.Equal(t, len(before), len(after))
	})

	t.Run("missing data", func(t *testing.T) {
		req := handlertest.Multipart(t, http.MethodPut, "/api/admin/restaurants/3", nil)
		rec := handlertest.Do(e, UpdateHandler(nil, proc, worker.Inline{}), req, handlertest.Params("id", "3"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateHandlerNotFound(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	getRestaurantByID = func(context.Context, database.Querier, int) (*model.Restaurant, error) {
		return nil, apperr.NotFound("restaurant not found")
	}
	rec := handlertest.Do(e, UpdateHandler(nil, nil, worker.Inline{}),
		handlertest.JSON(t, http.MethodPut, "/api/admin/restaurants/9", validRequest()), handlertest.Params("id", "9"))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReplaceImageHandler(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	proc := imaging.NewProcessor(t.TempDir())
	old, err := proc.Save(context.Background(), imaging.KindRestaurant, "image/jpeg", bytes.NewReader(handlertest.JPEG(t, 5, 5)))
	require.NoError(t, err)

	updateRestaurantImage = func(_ context.Context, _ database.Querier, id int, url string) (*string, error) {
		if id == 404 {
			return nil, apperr.NotFound("restaurant not found")
		}
		return &old, nil
	}
	imageInGallery = notInGallery

	upload := func(id string) *httptest.ResponseRecorder {
		req := handlertest.Multipart(t, http.MethodPut, "/api/admin/restaurants/"+id+"/image", nil,
			handlertest.File{Field: "file", Name: "x.jpg", ContentType: "image/jpeg", Data: handlertest.JPEG(t, 50, 50)})
		return handlertest.Do(e, ReplaceImageHandler(nil, proc, worker.Inline{}), req, handlertest.Params("id", id))
	}

	rec := upload("3")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.UploadResponse
	handlertest.Decode(t, rec, &resp)
	require.Contains(t, resp.URL, "?v=")
	_, err = os.Stat(storedPath(proc, old))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(storedPath(proc, resp.URL))
	require.NoError(t, err)

	entries, _ := os.ReadDir(filepath.Join(proc.Root, "restaurant"))
	rec = upload("404")
	require.Equal(t, http.StatusNotFound, rec.Code)
	after, _ := os.ReadDir(filepath.Join(proc.Root, "restaurant"))
	require.Equal(t, len(entries), len(after))
}

func TestReplaceImageKeepsGalleryFile(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	proc := imaging.NewProcessor(t.TempDir())

	// main gallery image: the same URL lives in restaurant_images and restaurants.image_url
	mainURL, err := proc.Save(context.Background(), imaging.KindRestaurant, "image/jpeg", bytes.NewReader(handlertest.JPEG(t, 30, 30)))
	require.NoError(t, err)
	gallery := map[string]bool{mainURL: true}
	imageInGallery = func(_ context.Context, _ database.Querier, url string) (bool, error) {
		return gallery[url], nil
	}
	current := mainURL
	updateRestaurantImage = func(_ context.Context, _ database.Querier, _ int, url string) (*string, error) {
		prev := current
		current = url
		return &prev, nil
	}

	req := handlertest.Multipart(t, http.MethodPut, "/api/admin/restaurants/3/image", nil,
		handlertest.File{Field: "file", Name: "x.jpg", ContentType: "image/jpeg", Data: handlertest.JPEG(t, 40, 40)})
	rec := handlertest.Do(e, ReplaceImageHandler(nil, proc, worker.Inline{}), req, handlertest.Params("id", "3"))
	require.Equal(t, http.StatusOK, rec.Code)
	_, err = os.Stat(storedPath(proc, mainURL))
	require.NoError(t, err, "gallery row still serves the old primary image")

	// the replacement was not in the gallery, so replacing it again removes it
	replacedURL := current
	req = handlertest.Multipart(t, http.MethodPut, "/api/admin/restaurants/3/image", nil,
		handlertest.File{Field: "file", Name: "y.jpg", ContentType: "image/jpeg", Data: handlertest.JPEG(t, 40, 40)})
	rec = handlertest.Do(e, ReplaceImageHandler(nil, proc, worker.Inline{}), req, handlertest.Params("id", "3"))
	require.Equal(t, http.StatusOK, rec.Code)
	_, err = os.Stat(storedPath(proc, replacedURL))
	require.True(t, os.IsNotExist(err))

	// lookup failure keeps the file
	imageInGallery = func(context.Context, database.Querier, string) (bool, error) {
		return false, apperr.Dependency("database error", errors.New("down"))
	}
	kept := current
	req = handlertest.Multipart(t, http.MethodPut, "/api/admin/restaurants/3/image", nil,
		handlertest.File{Field: "file", Name: "z.jpg", ContentType: "image/jpeg", Data: handlertest.JPEG(t, 40, 40)})
	rec = handlertest.Do(e, ReplaceImageHandler(nil, proc, worker.Inline{}), req, handlertest.Params("id", "3"))
	require.Equal(t, http.StatusOK, rec.Code)
	_, err = os.Stat(storedPath(proc, kept))
	require.NoError(t, err)
}

func TestUpdateHandlerKeepsGalleryFile(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	proc := imaging.NewProcessor(t.TempDir())
	mainURL, err := proc.Save(context.Background(), imaging.KindRestaurant, "image/jpeg", bytes.NewReader(handlertest.JPEG(t, 30, 30)))
	require.NoError(t, err)

	getRestaurantByID = func(context.Context, database.Querier, int) (*model.Restaurant, error) {
		return &model.Restaurant{ID: 3, ImageURL: &mainURL}, nil
	}
	updateRestaurant = func(_ context.Context, _ database.Querier, r *model.Restaurant) (*model.Restaurant, error) { return r, nil }
	imageInGallery = func(_ context.Context, _ database.Querier, url string) (bool, error) { return url == mainURL, nil }

	req := validRequest()
	req.ImageURL = ptr("")
	rec := handlertest.Do(e, UpdateHandler(nil, proc, worker.Inline{}),
		handlertest.JSON(t, http.MethodPut, "/api/admin/restaurants/3", req), handlertest.Params("id", "3"))
	require.Equal(t, http.StatusOK, rec.Code)
	_, err = os.Stat(storedPath(proc, mainURL))
	require.NoError(t, err)
}

func TestDeleteHandler(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	proc := imaging.NewProcessor(t.TempDir())
	asset, err := proc.Save(context.Background(), imaging.KindDish, "image/jpeg", bytes.NewReader(handlertest.JPEG(t, 5, 5)))
	require.NoError(t, err)

	deleteRestaurant = func(_ context.Context, _ database.DB, id int) (*store.DeleteResult, error) {
		if id != 3 {
			return nil, apperr.NotFound("restaurant not found")
		}
		return &store.DeleteResult{Dishes: 2, Images: 1, Assets: []string{asset, "https://cdn.example.com/x.jpg"}}, nil
	}
	rec := handlertest.Do(e, DeleteHandler(nil, proc, worker.Inline{}), httptest.NewRequest(http.MethodDelete, "/api/admin/restaurants/3", nil), handlertest.Params("id", "3"))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.DeleteRestaurantResponse
	handlertest.Decode(t, rec, &resp)
	require.Equal(t, api.DeleteRestaurantResponse{ID: 3, Dishes: 2, Images: 1}, resp)
	_, err = os.Stat(storedPath(proc, asset))
	require.True(t, os.IsNotExist(err))

	rec = handlertest.Do(e, DeleteHandler(nil, proc, worker.Inline{}), httptest.NewRequest(http.MethodDelete, "/api/admin/restaurants/4", nil), handlertest.Params("id", "4"))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearHandler(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	proc := imaging.NewProcessor(t.TempDir())
	asset, err := proc.Save(context.Background(), imaging.KindDish, "image/jpeg", bytes.NewReader(handlertest.JPEG(t, 5, 5)))
	require.NoError(t, err)
	called := false
	clearAllRestaurants = func(context.Context, database.DB) (*store.ClearResult, error) {
		called = true
		return &store.ClearResult{Restaurants: 2, Dishes: 3, Images: 1, Assets: []string{asset}}, nil
	}
	req := func(confirm bool) *http.Request {
		r := httptest.NewRequest(http.MethodDelete, "/api/admin/restaurants", nil)
		if confirm {
			r.Header.Set(handler.HeaderConfirmDelete, "true")
		}
		return r
	}

	rec := handlertest.Do(e, ClearHandler(nil, proc, worker.Inline{}, false), req(true))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, called)

	rec = handlertest.Do(e, ClearHandler(nil, proc, worker.Inline{}, true), req(false))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, called)

	rec = handlertest.Do(e, ClearHandler(nil, proc, worker.Inline{}, true), req(true))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, called)
	require.JSONEq(t, `{"restaurants":2,"dishes":3,"images":1}`, rec.Body.String())
	_, err = os.Stat(storedPath(proc, asset))
	require.True(t, os.IsNotExist(err))
}
