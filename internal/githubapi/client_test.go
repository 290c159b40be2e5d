package githubapi_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zig-devel/overseer/internal/githubapi"
)

const (
	testOrganizationNameConstant          = "zig-devel"
	testBearerTokenConstant               = "test-token"
	testFirstRepositoryNameConstant       = "libfoo"
	testSecondRepositoryNameConstant      = "libbar"
	testThirdRepositoryNameConstant       = "libbaz"
	testPaginationCaseNameConstant        = "paginates_until_empty_page"
	testAuthorizationCaseNameConstant     = "sends_bearer_token"
	testUnauthenticatedCaseNameConstant   = "omits_authorization_header"
	testStatusErrorCaseNameConstant       = "propagates_api_status"
	testMalformedResponseCaseNameConstant = "rejects_malformed_json"
	testHandlerAbortCaseNameConstant      = "handler_error_aborts"
)

func repositoryListingPayload(names ...string) string {
	payload := "["
	for index, name := range names {
		if index > 0 {
			payload += ","
		}
		payload += fmt.Sprintf(`{"name":%q,"clone_url":"https://github.com/zig-devel/%s.git","default_branch":"main"}`, name, name)
	}
	return payload + "]"
}

func TestClientListsOrganizationRepositories(testInstance *testing.T) {
	testInstance.Run(testPaginationCaseNameConstant, func(testInstance *testing.T) {
		pagesByNumber := map[string]string{
			"1": repositoryListingPayload(testFirstRepositoryNameConstant, testSecondRepositoryNameConstant),
			"2": repositoryListingPayload(testThirdRepositoryNameConstant),
			"3": "[]",
		}

		var requestedPageSizes []string
		listingServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
			requestedPageSizes = append(requestedPageSizes, request.URL.Query().Get("per_page"))
			fmt.Fprint(responseWriter, pagesByNumber[request.URL.Query().Get("page")])
		}))
		defer listingServer.Close()

		apiClient, clientError := githubapi.NewClient(zap.NewNop(), listingServer.Client(), githubapi.ClientConfiguration{BaseURL: listingServer.URL})
		require.NoError(testInstance, clientError)

		var collectedNames []string
		listingError := apiClient.ListOrganizationRepositories(context.Background(), testOrganizationNameConstant, func(page githubapi.RepositoryPage) error {
			require.Len(testInstance, page.RawRecords, len(page.Records))
			for _, record := range page.Records {
				collectedNames = append(collectedNames, record.Name)
			}
			return nil
		})

		require.NoError(testInstance, listingError)
		require.Equal(testInstance, []string{testFirstRepositoryNameConstant, testSecondRepositoryNameConstant, testThirdRepositoryNameConstant}, collectedNames)
		require.Equal(testInstance, []string{"100", "100", "100"}, requestedPageSizes)
	})

	testInstance.Run(testAuthorizationCaseNameConstant, func(testInstance *testing.T) {
		var observedAuthorization string
		listingServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
			observedAuthorization = request.Header.Get("Authorization")
			fmt.Fprint(responseWriter, "[]")
		}))
		defer listingServer.Close()

		apiClient, clientError := githubapi.NewClient(zap.NewNop(), listingServer.Client(), githubapi.ClientConfiguration{
			BaseURL:     listingServer.URL,
			BearerToken: testBearerTokenConstant,
		})
		require.NoError(testInstance, clientError)

		listingError := apiClient.ListOrganizationRepositories(context.Background(), testOrganizationNameConstant, func(githubapi.RepositoryPage) error {
			return nil
		})

		require.NoError(testInstance, listingError)
		require.Equal(testInstance, "Bearer "+testBearerTokenConstant, observedAuthorization)
	})

	testInstance.Run(testUnauthenticatedCaseNameConstant, func(testInstance *testing.T) {
		var observedAuthorization string
		listingServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
			observedAuthorization = request.Header.Get("Authorization")
			fmt.Fprint(responseWriter, "[]")
		}))
		defer listingServer.Close()

		apiClient, clientError := githubapi.NewClient(zap.NewNop(), listingServer.Client(), githubapi.ClientConfiguration{BaseURL: listingServer.URL})
		require.NoError(testInstance, clientError)

		listingError := apiClient.ListOrganizationRepositories(context.Background(), testOrganizationNameConstant, func(githubapi.RepositoryPage) error {
			return nil
		})

		require.NoError(testInstance, listingError)
		require.Empty(testInstance, observedAuthorization)
	})

	testInstance.Run(testStatusErrorCaseNameConstant, func(testInstance *testing.T) {
		listingServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
			responseWriter.WriteHeader(http.StatusForbidden)
		}))
		defer listingServer.Close()

		apiClient, clientError := githubapi.NewClient(zap.NewNop(), listingServer.Client(), githubapi.ClientConfiguration{BaseURL: listingServer.URL})
		require.NoError(testInstance, clientError)

		listingError := apiClient.ListOrganizationRepositories(context.Background(), testOrganizationNameConstant, func(githubapi.RepositoryPage) error {
			return nil
		})

		statusError := githubapi.APIStatusError{}
		require.Error(testInstance, listingError)
		require.ErrorAs(testInstance, listingError, &statusError)
		require.Equal(testInstance, http.StatusForbidden, statusError.StatusCode)
	})

	testInstance.Run(testMalformedResponseCaseNameConstant, func(testInstance *testing.T) {
		listingServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
			fmt.Fprint(responseWriter, "{not json")
		}))
		defer listingServer.Close()

		apiClient, clientError := githubapi.NewClient(zap.NewNop(), listingServer.Client(), githubapi.ClientConfiguration{BaseURL: listingServer.URL})
		require.NoError(testInstance, clientError)

		listingError := apiClient.ListOrganizationRepositories(context.Background(), testOrganizationNameConstant, func(githubapi.RepositoryPage) error {
			return nil
		})

		require.Error(testInstance, listingError)
	})

	testInstance.Run(testHandlerAbortCaseNameConstant, func(testInstance *testing.T) {
		var servedPages int
		listingServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
			servedPages++
			fmt.Fprint(responseWriter, repositoryListingPayload(testFirstRepositoryNameConstant))
		}))
		defer listingServer.Close()

		apiClient, clientError := githubapi.NewClient(zap.NewNop(), listingServer.Client(), githubapi.ClientConfiguration{BaseURL: listingServer.URL})
		require.NoError(testInstance, clientError)

		handlerFailure := fmt.Errorf("cache append failed")
		listingError := apiClient.ListOrganizationRepositories(context.Background(), testOrganizationNameConstant, func(githubapi.RepositoryPage) error {
			return handlerFailure
		})

		require.ErrorIs(testInstance, listingError, handlerFailure)
		require.Equal(testInstance, 1, servedPages)
	})
}
