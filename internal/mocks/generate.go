package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=profile_store_mock.go github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports ProfileStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=candidate_store_mock.go github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports CandidateStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=kv_store_mock.go github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports KVStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_source_mock.go github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports SessionSource
