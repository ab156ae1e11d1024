package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFaultInfoSetFailedRecordsPerpetrator(t *testing.T) {
	var f faultInfo
	assert.False(t, f.isFailed())

	perp := childRef("a")
	f.setFailed(perp)
	assert.True(t, f.isFailed())
	assert.True(t, f.perpetratorRef().Equal(perp))
}

func TestFaultInfoSetFailedNilSelfAsPerpetrator(t *testing.T) {
	var f faultInfo
	f.setFailed(nil)
	assert.True(t, f.isFailed())
	assert.Nil(t, f.perpetratorRef())
}

func TestFaultInfoFailedFatallyIsSticky(t *testing.T) {
	var f faultInfo
	f.setFailedFatally()
	assert.True(t, f.isFailed())

	f.setFailed(childRef("a"))
	assert.Nil(t, f.perpetratorRef(), "FailedFatally must not downgrade to FailedRef")
}

func TestFaultInfoClearResetsToNoFailedInfo(t *testing.T) {
	var f faultInfo
	f.setFailed(childRef("a"))
	f.clear()
	assert.False(t, f.isFailed())
	assert.Nil(t, f.perpetratorRef())
}
