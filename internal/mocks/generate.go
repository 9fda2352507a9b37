package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Source --dir ../domain/gamelog --output domain/gamelog --outpkg gamelogmock --filename source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name PlayerDirectory --dir ../domain/gamelog --output domain/gamelog --outpkg gamelogmock --filename player_directory_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Provider --dir ../domain/sportsbook --output domain/sportsbook --outpkg sportsbookmock --filename provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Provider --dir ../domain/schedule --output domain/schedule --outpkg schedulemock --filename provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Projector --dir ../domain/projection --output domain/projection --outpkg projectionmock --filename projector_mock.go
