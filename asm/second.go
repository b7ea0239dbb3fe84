package asm

// runSecond is the second pass: with the symbol table complete it resolves
// every fix-up the first pass recorded, writing the operand word with its ARE
// bits, and records the reference site of every external symbol use.
func runSecond(s *state) {
	for _, f := range s.fixups {
		target := s.symbols.Find(f.sym)
		if target == nil {
			s.errs.Errorf(f.line, "the operand (%s) is an undefined label", f.sym)
			continue
		}

		if target.Has(KindExternal) {
			if f.mode == amRelative {
				s.errs.Errorf(f.line, "the symbol (%s) is external and cannot be used with relative addressing", f.sym)
				continue
			}
			s.code.Set(f.slot, areE)
			target.AddExternRef(int32(f.slot) + LoadBase)
			continue
		}

		if target.Addr == addrUndefined {
			// Declared (.entry, say) but never given a definition.
			s.errs.Errorf(f.line, "the operand (%s) is an undefined label", f.sym)
			continue
		}

		if f.mode == amRelative {
			if target.Has(KindData) {
				s.errs.Errorf(f.line, "the symbol (%s) is a data symbol and cannot be used with relative addressing", f.sym)
				continue
			}
			// The distance is measured from the extra word's own address.
			dist := target.Addr - (int32(f.slot) + LoadBase) + 1
			s.code.Set(f.slot, uint32(dist)<<areShift|areA)
			continue
		}

		s.code.Set(f.slot, uint32(target.Addr)<<areShift|areR)
	}
}
