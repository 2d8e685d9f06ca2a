package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/otp-transfers/pkg/models"
	"github.com/chris/otp-transfers/pkg/storage"
	"github.com/chris/otp-transfers/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetAccount(t *testing.T) {
	account := &models.Account{AccountID: "acct-1", Name: "Ana", Balances: map[string]int64{"PHP": 100000}, Version: 3}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		av, err := attributevalue.MarshalMap(account)
		require.NoError(t, err)
		mockClient.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
			return *in.TableName == "accounts" && *in.ConsistentRead
		})).Once().Return(&dynamodb.GetItemOutput{Item: av}, nil)

		result, err := store.GetAccount(context.Background(), "acct-1")

		assert.NoError(t, err)
		assert.Equal(t, int64(100000), result.Balance("PHP"))
		assert.Equal(t, int64(3), result.Version)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: nil}, nil)

		_, err := store.GetAccount(context.Background(), "missing")

		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(nil, errors.New("boom"))

		_, err := store.GetAccount(context.Background(), "acct-1")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get account from DynamoDB")
		mockClient.AssertExpectations(t)
	})
}

func TestFindAccountByPhone(t *testing.T) {
	account := &models.Account{AccountID: "acct-2", PhoneNumber: "+639171234567", Balances: map[string]int64{}}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		av, err := attributevalue.MarshalMap(account)
		require.NoError(t, err)
		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return *in.IndexName == phoneIndex && in.ExpressionAttributeNames["#attr"] == "phone_number"
		})).Once().Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{av}}, nil)

		result, err := store.FindAccountByPhone(context.Background(), "+639171234567")

		assert.NoError(t, err)
		assert.Equal(t, "acct-2", result.AccountID)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		mockClient.On("Query", mock.Anything, mock.Anything).Once().Return(&dynamodb.QueryOutput{}, nil)

		_, err := store.FindAccountByEmail(context.Background(), "nobody@example.com")

		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
		mockClient.AssertExpectations(t)
	})
}

func TestCreateAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		mockClient.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
			balances, ok := in.Item["balances"].(*types.AttributeValueMemberM)
			return ok && balances.Value != nil
		})).Once().Return(&dynamodb.PutItemOutput{}, nil)

		created, err := store.CreateAccount(context.Background(), &models.Account{AccountID: "acct-3"})

		assert.NoError(t, err)
		assert.Equal(t, int64(1), created.Version)
		assert.NotNil(t, created.Balances)
		mockClient.AssertExpectations(t)
	})

	t.Run("Already Exists", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		mockClient.On("PutItem", mock.Anything, mock.Anything).Once().Return(nil, &types.ConditionalCheckFailedException{})

		_, err := store.CreateAccount(context.Background(), &models.Account{AccountID: "acct-3"})

		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
		mockClient.AssertExpectations(t)
	})
}
