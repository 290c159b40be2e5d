package flags_test

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/zig-devel/overseer/internal/utils/flags"
)

const (
	testToggleFlagNameConstant          = "invalidate-cache"
	testBareToggleCaseNameConstant      = "bare_flag_enables"
	testExplicitYesCaseNameConstant     = "explicit_yes"
	testExplicitNoCaseNameConstant      = "explicit_no"
	testNumericTrueCaseNameConstant     = "numeric_true"
	testInvalidLiteralCaseNameConstant  = "invalid_literal"
	testDefaultPreservedCaseNameConstant = "default_preserved"
)

func TestAddToggleFlagParsesLiterals(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedValue bool
		expectError   bool
	}{
		{
			name:          testBareToggleCaseNameConstant,
			arguments:     []string{"--" + testToggleFlagNameConstant},
			expectedValue: true,
		},
		{
			name:          testExplicitYesCaseNameConstant,
			arguments:     []string{"--" + testToggleFlagNameConstant + "=yes"},
			expectedValue: true,
		},
		{
			name:          testExplicitNoCaseNameConstant,
			arguments:     []string{"--" + testToggleFlagNameConstant + "=no"},
			expectedValue: false,
		},
		{
			name:          testNumericTrueCaseNameConstant,
			arguments:     []string{"--" + testToggleFlagNameConstant + "=1"},
			expectedValue: true,
		},
		{
			name:        testInvalidLiteralCaseNameConstant,
			arguments:   []string{"--" + testToggleFlagNameConstant + "=sometimes"},
			expectError: true,
		},
		{
			name:          testDefaultPreservedCaseNameConstant,
			arguments:     nil,
			expectedValue: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			flagSet := pflag.NewFlagSet(testToggleFlagNameConstant, pflag.ContinueOnError)
			var toggleTarget bool
			flags.AddToggleFlag(flagSet, &toggleTarget, testToggleFlagNameConstant, "", false, "")

			parseError := flagSet.Parse(testCase.arguments)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}

			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedValue, toggleTarget)
		})
	}
}
