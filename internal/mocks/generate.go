// Package mocks provides gomock implementations of the HeirAid ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	index := mocks.NewMockSearchIndex(ctrl)
//	index.EXPECT().Search(gomock.Any(), gomock.Any()).Return(docs, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=search_index_mock.go github.com/heiraid/heiraid-api/internal/ports SearchIndex
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=chat_model_mock.go github.com/heiraid/heiraid-api/internal/ports ChatModel
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=blob_store_mock.go github.com/heiraid/heiraid-api/internal/ports BlobStore

// Catalog and quota mocks back the documents grid and the guest metering middleware.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=document_catalog_mock.go github.com/heiraid/heiraid-api/internal/ports DocumentCatalog
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=guest_quota_mock.go github.com/heiraid/heiraid-api/internal/ports GuestQuota
