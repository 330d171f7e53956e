package todo

import (
	"fmt"

	"github.com/roach88/bountylist/internal/address"
	"github.com/roach88/bountylist/internal/runtime"
)

// FetchList reads the list at addr.
func FetchList(r runtime.AccountReader, addr address.Address) (*TodoList, error) {
	acct, err := fetch(r, addr)
	if err != nil {
		return nil, err
	}
	return UnmarshalList(acct.Data)
}

// FetchItem reads the item at addr. Closed or missing items are not found.
func FetchItem(r runtime.AccountReader, addr address.Address) (*ListItem, error) {
	acct, err := fetch(r, addr)
	if err != nil {
		return nil, err
	}
	if IsClosed(acct.Data) {
		return nil, fmt.Errorf("%w: %s is closed", ErrAccountNotInitialized, addr)
	}
	return UnmarshalItem(acct.Data)
}

func fetch(r runtime.AccountReader, addr address.Address) (runtime.Account, error) {
	acct, ok := r.Account(addr)
	if !ok || !acct.Live() {
		return runtime.Account{}, fmt.Errorf("%w: %s", ErrAccountNotInitialized, addr)
	}
	if acct.Owner != ProgramID {
		return runtime.Account{}, fmt.Errorf("%w: %s", ErrAccountOwnedByWrongProgram, addr)
	}
	return acct, nil
}
