package services_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/crestpeak/hrfin_backend/internal/core/services"
)

type ReturnScannerTestSuite struct {
	suite.Suite
	mockLedgerRepo *MockLedgerRepository
	scanner        *services.ReturnWindowScanner
}

func (suite *ReturnScannerTestSuite) SetupTest() {
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.scanner = services.NewReturnWindowScanner(suite.mockLedgerRepo, stubTxManager{}, time.Minute, slog.Default())
}

func (suite *ReturnScannerTestSuite) TestScanOnce_NothingExpired() {
	ctx := context.Background()
	suite.mockLedgerRepo.On("FindReturnWindowExpired", ctx, mock.Anything, 100).Return([]string{}, nil).Once()

	err := suite.scanner.ScanOnce(ctx)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "MarkReadyForRetainedEarning", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReturnScannerTestSuite) TestScanOnce_FlipsInBatches() {
	ctx := context.Background()
	ids := make([]string, 0, 80)
	for i := 0; i < 80; i++ {
		ids = append(ids, string(rune('a'+i%26))+"-txn")
	}
	suite.mockLedgerRepo.On("FindReturnWindowExpired", ctx, mock.Anything, 100).Return(ids, nil).Once()

	var batches [][]string
	suite.mockLedgerRepo.On("MarkReadyForRetainedEarning", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			batches = append(batches, args.Get(1).([]string))
		}).Return(nil).Twice()

	err := suite.scanner.ScanOnce(ctx)

	suite.Require().NoError(err)
	suite.Require().Len(batches, 2)
	suite.Len(batches[0], 50)
	suite.Len(batches[1], 30)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func TestReturnScannerTestSuite(t *testing.T) {
	suite.Run(t, new(ReturnScannerTestSuite))
}
